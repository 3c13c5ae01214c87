package server

import (
	"net/http"
	"strings"

	"rtoassist/pkg/types"
)

// handleGetPayment is the hand-off summary shown before the external
// payment provider takes over.
func (s *Service) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	plan := strings.TrimSpace(r.URL.Query().Get("plan"))
	price := strings.TrimSpace(r.URL.Query().Get("price"))
	if plan == "" || price == "" {
		http.Redirect(w, r, "/rto-services/apply", http.StatusSeeOther)
		return
	}

	data := &types.PaymentPageData{
		BasePageData: types.BasePageData{Title: "Complete Payment"},
		Plan:         plan,
		Price:        price,
	}

	err := s.renderTemplate(w, r, "page.payment", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render payment page")
		s.internalServerError(w)
		return
	}
}
