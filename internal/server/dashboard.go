package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rtoassist/internal/rto"
	"rtoassist/pkg/types"
)

type DashboardRow struct {
	ID          string
	FullName    string
	ServiceType types.ServiceType
	Date        string
	Status      types.RequestStatus
}

type DashboardPageData struct {
	types.BasePageData
	Scope         types.RequestScope
	ScopeTabs     []types.NavItem
	Rows          []DashboardRow
	StatusOptions []types.RequestStatus
	Page          int
	TotalPages    int
	Total         int
	PrevHref      string
	NextHref      string
}

type RequestDetailPageData struct {
	types.BasePageData
	Detail   *rto.RequestDetail
	BackHref string
}

func (s *Service) newRequestList(scope types.RequestScope) *rto.RequestList {
	return rto.NewRequestList(s.logger, s.store, scope,
		rto.WithRowLocks(s.rowLocks),
		rto.WithListObserver(s.metrics),
	)
}

func (s *Service) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scope := parseScope(r.URL.Query().Get("scope"))
	list := s.newRequestList(scope)
	if err := list.Load(ctx); err != nil {
		s.logger.WithError(err).WithField("scope", scope).Error("failed to load rto requests for dashboard")
		s.internalServerError(w)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	list.SetPage(page)

	data := &DashboardPageData{
		BasePageData:  types.BasePageData{Title: "RTO Assistance Requests"},
		Scope:         scope,
		ScopeTabs:     scopeTabs(scope),
		StatusOptions: types.RequestStatusOptions,
		Page:          list.CurrentPage(),
		TotalPages:    list.TotalPages(),
		Total:         list.Len(),
	}

	for _, req := range list.Page() {
		data.Rows = append(data.Rows, DashboardRow{
			ID:          req.ID,
			FullName:    req.FullName,
			ServiceType: req.ServiceType,
			Date:        req.CreatedAt.Format("Jan 2, 2006"),
			Status:      req.Status,
		})
	}

	if list.HasPrevious() {
		data.PrevHref = dashboardHref(scope, data.Page-1)
	}
	if list.HasNext() {
		data.NextHref = dashboardHref(scope, data.Page+1)
	}

	err := s.renderTemplate(w, r, "page.dashboard", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render rto dashboard")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleGetRequestDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(r.PathValue("id"))
	scope := parseScope(r.URL.Query().Get("scope"))

	req, err := s.store.Request(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			s.redirectWithError(w, r, dashboardHref(scope, 1), "Request not found.")
			return
		}
		s.logger.WithError(err).WithField("request_id", id).Error("failed to load rto request detail")
		s.internalServerError(w)
		return
	}

	data := &RequestDetailPageData{
		BasePageData: types.BasePageData{Title: fmt.Sprintf("Request Details: %s", req.FullName)},
		Detail:       rto.NewRequestDetail(req),
		BackHref:     dashboardHref(scope, 1),
	}

	err = s.renderTemplate(w, r, "page.dashboard.detail", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render rto request detail")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostRequestStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, dashboardHref(types.RequestScopePending, 1), "Invalid form payload.")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	status := types.RequestStatus(strings.TrimSpace(r.FormValue("status")))
	scope := parseScope(r.FormValue("scope"))
	page, _ := strconv.Atoi(r.FormValue("page"))
	back := dashboardHref(scope, max(page, 1))

	list := s.newRequestList(scope)
	err := list.UpdateStatus(ctx, id, status)
	if err != nil {
		var serr *types.StatusUpdateError
		if errors.As(err, &serr) {
			msg := "Could not update request status."
			if errors.Is(err, types.ErrRowUpdateInFlight) {
				msg = "An update for this request is already in progress."
			}
			s.redirectWithError(w, r, back, msg)
			return
		}

		// Status changed, only the reload failed.
		s.logger.WithError(err).WithField("request_id", id).Warn("status updated but reload failed")
	}

	s.redirectWithNotice(w, r, back, fmt.Sprintf("Request status set to %s.", status))
}

func parseScope(raw string) types.RequestScope {
	scope := types.RequestScope(strings.TrimSpace(raw))
	if !scope.Valid() {
		return types.RequestScopePending
	}
	return scope
}

func dashboardHref(scope types.RequestScope, page int) string {
	v := url.Values{}
	v.Set("scope", string(scope))
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return "/dashboard/rto?" + v.Encode()
}

func scopeTabs(active types.RequestScope) []types.NavItem {
	tabs := make([]types.NavItem, 0, len(types.RequestScopeOptions))
	for _, scope := range types.RequestScopeOptions {
		label := "All"
		if status, ok := scope.Status(); ok {
			label = string(status)
		}
		tabs = append(tabs, types.NavItem{
			Label:  label,
			Href:   dashboardHref(scope, 1),
			Active: scope == active,
		})
	}
	return tabs
}
