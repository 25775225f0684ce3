package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	printshop "github.com/goliatone/go-printshop/components/printshop"
)

type layoutService interface {
	ConfigureLayout(ctx context.Context, session printshop.Session) (printshop.Layout, error)
}

// DashboardQuery executes read-only layout resolution.
type DashboardQuery struct {
	service layoutService
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(service layoutService) *DashboardQuery {
	return &DashboardQuery{service: service}
}

var _ gocommand.Querier[printshop.Session, printshop.Layout] = (*DashboardQuery)(nil)

// Query resolves the dashboard for the session.
func (q *DashboardQuery) Query(ctx context.Context, session printshop.Session) (printshop.Layout, error) {
	return q.service.ConfigureLayout(ctx, session)
}
