package server

import (
	"net/http"

	"rtoassist/pkg/types"
)

const flashCookieName = "rto_flash"

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	s.setFlash(w, types.Flash{Notice: notice})
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	s.setFlash(w, types.Flash{Error: msg})
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *Service) setFlash(w http.ResponseWriter, flash types.Flash) {
	encoded, err := s.cookie.Encode(flashCookieName, flash)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode flash cookie")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   60,
	})
}

// popFlash reads and clears the flash cookie.
func (s *Service) popFlash(w http.ResponseWriter, r *http.Request) types.Flash {
	var flash types.Flash

	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return flash
	}

	if err := s.cookie.Decode(flashCookieName, cookie.Value, &flash); err != nil {
		s.logger.WithError(err).Debug("discarding undecodable flash cookie")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	return flash
}
