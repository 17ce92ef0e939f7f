package services_test

import (
	"context"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

type fakeOfficeRepo struct {
	offices map[uint]*planning.Office
}

func newFakeOfficeRepo(offices ...*planning.Office) *fakeOfficeRepo {
	repo := &fakeOfficeRepo{offices: make(map[uint]*planning.Office)}
	for _, o := range offices {
		repo.offices[o.ID] = o
	}
	return repo
}

func (r *fakeOfficeRepo) FindByID(ctx context.Context, id uint) (*planning.Office, error) {
	office, ok := r.offices[id]
	if !ok || !office.IsActive {
		return nil, planning.ErrOfficeNotFound
	}
	return office, nil
}

func (r *fakeOfficeRepo) FindByIDs(ctx context.Context, ids []uint) ([]*planning.Office, error) {
	var out []*planning.Office
	for _, id := range ids {
		if office, ok := r.offices[id]; ok && office.IsActive {
			out = append(out, office)
		}
	}
	return out, nil
}

type fakeDistributorRepo struct {
	distributors []*planning.Distributor
}

func (r *fakeDistributorRepo) FindActiveServing(ctx context.Context, officeIDs []uint) ([]*planning.Distributor, error) {
	var out []*planning.Distributor
	for _, d := range r.distributors {
		if !d.IsActive {
			continue
		}
		serves := true
		for _, id := range officeIDs {
			if d.RouteTo(id) == nil {
				serves = false
				break
			}
		}
		if serves {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	nextID      uint
	results     map[uint]*planning.PlanResult
	priorOrders map[uint][]planning.PriorOrder
	saved       []*planning.PlanResult
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		nextID:      1,
		results:     make(map[uint]*planning.PlanResult),
		priorOrders: make(map[uint][]planning.PriorOrder),
	}
}

func (r *fakePlanRepo) SaveResult(ctx context.Context, result *planning.PlanResult) error {
	result.ID = r.nextID
	r.nextID++
	r.results[result.ID] = result
	r.saved = append(r.saved, result)

	orders := make([]planning.PriorOrder, 0, len(result.Orders))
	for i, order := range result.Orders {
		orders = append(orders, planning.PriorOrder{ID: result.ID*100 + uint(i), OrderIntent: order})
	}
	r.priorOrders[result.ID] = orders
	return nil
}

func (r *fakePlanRepo) FindByID(ctx context.Context, id uint) (*planning.PlanResult, error) {
	result, ok := r.results[id]
	if !ok {
		return nil, planning.ErrPlanNotFound
	}
	return result, nil
}

func (r *fakePlanRepo) FindWithResults(ctx context.Context, id uint) (*planning.PlanResult, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePlanRepo) FindRecent(ctx context.Context, officeID uint, limit int) ([]*planning.PlanResult, error) {
	var out []*planning.PlanResult
	for _, result := range r.saved {
		out = append(out, result)
	}
	return out, nil
}

func (r *fakePlanRepo) FindPriorOrders(ctx context.Context, planID uint) ([]planning.PriorOrder, error) {
	return r.priorOrders[planID], nil
}

type fakeParamRepo struct {
	values map[string]float64
}

func (r *fakeParamRepo) GetFloat(ctx context.Context, name string, fallback float64) (float64, error) {
	if r.values != nil {
		if v, ok := r.values[name]; ok {
			return v, nil
		}
	}
	return fallback, nil
}
