package advisor

import "context"

// Enhancer rewrites a suggestion's recommendation with richer context,
// typically backed by a knowledge source or a language model. Returning an
// empty string keeps the stock recommendation.
type Enhancer interface {
	Enhance(ctx context.Context, s Suggestion) (string, error)
}

// enhanceTop bounds how many suggestions get the (potentially slow)
// enhancement treatment. The list is already sorted most severe first.
const enhanceTop = 5

func (ad *Advisor) applyEnhancements(ctx context.Context, suggestions []Suggestion) {
	if ad.opts.Enhancer == nil {
		return
	}
	limit := enhanceTop
	if len(suggestions) < limit {
		limit = len(suggestions)
	}
	for i := 0; i < limit; i++ {
		enhanced, err := ad.enhanceOne(ctx, suggestions[i])
		if err != nil {
			ad.logger.Warn("enhancement failed, keeping stock recommendation",
				"type", suggestions[i].Type,
				"error", err,
			)
			continue
		}
		if enhanced != "" {
			suggestions[i].Recommendation = enhanced
		}
	}
}

func (ad *Advisor) enhanceOne(ctx context.Context, s Suggestion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ad.opts.EnhanceTimeout)
	defer cancel()
	return ad.opts.Enhancer.Enhance(ctx, s)
}
