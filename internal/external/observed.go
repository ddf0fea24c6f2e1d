package external

import "context"

// Observer is told the outcome of each lookup
type Observer func(provider, operation, outcome string)

type observed struct {
	Client
	observe Observer
}

// WithObserver wraps c so every call reports "found" or "empty" to observe
func WithObserver(c Client, observe Observer) Client {
	if observe == nil {
		return c
	}
	return &observed{Client: c, observe: observe}
}

func (o *observed) SearchByTitle(ctx context.Context, title string) []Suggestion {
	hits := o.Client.SearchByTitle(ctx, title)
	o.observe(o.Name(), "search", outcome(len(hits) > 0))
	return hits
}

func (o *observed) FetchDetail(ctx context.Context, id int64) *Detail {
	detail := o.Client.FetchDetail(ctx, id)
	o.observe(o.Name(), "detail", outcome(detail != nil))
	return detail
}

func outcome(found bool) string {
	if found {
		return "found"
	}
	return "empty"
}
