package compare

import (
	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/money"
)

func computeStats(cs []entity.Comparison) entity.UserStats {
	var st entity.UserStats
	var premiums []string
	for _, c := range cs {
		st.TotalQuotes += len(c.Quotes)
		switch c.Status {
		case constants.StatusCompleted:
			st.Completed++
		case constants.StatusProcessing:
			st.Processing++
		case constants.StatusFailed:
			st.Failed++
		}
		for _, q := range c.Quotes {
			premiums = append(premiums, q.TotalPremium)
		}
	}
	st.AveragePremium = money.Average(premiums)
	return st
}
