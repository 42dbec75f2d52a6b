package memstore

import (
	"context"
	"sort"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) insert(n *models.Notification) {
	n.ID = r.s.d.notifications.nextID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	r.s.d.notifications.rows[n.ID] = *n
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	defer r.s.lock()()
	if err := r.s.fail("notifications.Create"); err != nil {
		return err
	}
	r.insert(n)
	return nil
}

func (r *notificationRepo) CreateBatch(ctx context.Context, list []*models.Notification) error {
	defer r.s.lock()()
	if err := r.s.fail("notifications.CreateBatch"); err != nil {
		return err
	}
	for _, n := range list {
		r.insert(n)
	}
	return nil
}

func (r *notificationRepo) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Notification, int64, error) {
	defer r.s.lock()()
	ids := r.s.d.notifications.sortedIDs()
	var list []*models.Notification
	for i := len(ids) - 1; i >= 0; i-- {
		n := r.s.d.notifications.rows[ids[i]]
		if n.MemberID == memberID {
			list = append(list, &n)
		}
	}
	return page(list, offset, limit), int64(len(list)), nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, memberID uint) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, row := range r.s.d.notifications.rows {
		if row.MemberID == memberID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, memberID, id uint) (bool, error) {
	defer r.s.lock()()
	row, ok := r.s.d.notifications.rows[id]
	if !ok || row.MemberID != memberID {
		return false, nil
	}
	t := now()
	row.IsRead = true
	row.ReadAt = &t
	r.s.d.notifications.rows[id] = row
	return true, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, memberID uint) (int64, error) {
	defer r.s.lock()()
	var n int64
	t := now()
	for id, row := range r.s.d.notifications.rows {
		if row.MemberID == memberID && !row.IsRead {
			row.IsRead = true
			row.ReadAt = &t
			r.s.d.notifications.rows[id] = row
			n++
		}
	}
	return n, nil
}

type benefitRepo struct{ s *Store }

func (r *benefitRepo) Create(ctx context.Context, b *models.BenefitUsage) error {
	defer r.s.lock()()
	b.ID = r.s.d.benefits.nextID()
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	r.s.d.benefits.rows[b.ID] = *b
	return nil
}

func (r *benefitRepo) GetByID(ctx context.Context, id uint) (*models.BenefitUsage, error) {
	defer r.s.lock()()
	b, ok := r.s.d.benefits.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &b, nil
}

func (r *benefitRepo) Update(ctx context.Context, b *models.BenefitUsage) error {
	defer r.s.lock()()
	if _, ok := r.s.d.benefits.rows[b.ID]; !ok {
		return notFound()
	}
	b.UpdatedAt = now()
	r.s.d.benefits.rows[b.ID] = *b
	return nil
}

func (r *benefitRepo) Delete(ctx context.Context, id uint) error {
	defer r.s.lock()()
	delete(r.s.d.benefits.rows, id)
	return nil
}

func (r *benefitRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.BenefitUsage, error) {
	defer r.s.lock()()
	var list []*models.BenefitUsage
	for _, id := range r.s.d.benefits.sortedIDs() {
		b := r.s.d.benefits.rows[id]
		if b.MemberID == memberID {
			list = append(list, &b)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].ID > list[j].ID
		}
		return list[i].Date.After(list[j].Date)
	})
	return list, nil
}

func (r *benefitRepo) TotalsByType(ctx context.Context, scope domain.Scope) (map[string]float64, error) {
	defer r.s.lock()()
	totals := map[string]float64{}
	for _, b := range r.s.d.benefits.rows {
		m, ok := r.s.d.members.rows[b.MemberID]
		if !ok || !inScope(scope, m.Mandalam) {
			continue
		}
		totals[b.Type] += b.AmountPaid
	}
	return totals, nil
}

type changeRequestRepo struct{ s *Store }

func (r *changeRequestRepo) Create(ctx context.Context, cr *models.ChangeRequest) error {
	defer r.s.lock()()
	if err := r.s.fail("changeRequests.Create"); err != nil {
		return err
	}
	cr.ID = r.s.d.changeRequests.nextID()
	cr.CreatedAt = now()
	cr.UpdatedAt = cr.CreatedAt
	row := *cr
	row.Member = nil
	r.s.d.changeRequests.rows[cr.ID] = row
	return nil
}

func (r *changeRequestRepo) GetByID(ctx context.Context, id uint) (*models.ChangeRequest, error) {
	defer r.s.lock()()
	cr, ok := r.s.d.changeRequests.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &cr, nil
}

func (r *changeRequestRepo) Update(ctx context.Context, cr *models.ChangeRequest) error {
	defer r.s.lock()()
	if err := r.s.fail("changeRequests.Update"); err != nil {
		return err
	}
	if _, ok := r.s.d.changeRequests.rows[cr.ID]; !ok {
		return notFound()
	}
	cr.UpdatedAt = now()
	row := *cr
	row.Member = nil
	r.s.d.changeRequests.rows[cr.ID] = row
	return nil
}

func (r *changeRequestRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.ChangeRequest, error) {
	defer r.s.lock()()
	ids := r.s.d.changeRequests.sortedIDs()
	var list []*models.ChangeRequest
	for i := len(ids) - 1; i >= 0; i-- {
		cr := r.s.d.changeRequests.rows[ids[i]]
		if cr.MemberID == memberID {
			list = append(list, &cr)
		}
	}
	return list, nil
}

func (r *changeRequestRepo) ListPending(ctx context.Context, scope domain.Scope, offset, limit int) ([]*models.ChangeRequest, int64, error) {
	defer r.s.lock()()
	var list []*models.ChangeRequest
	for _, id := range r.s.d.changeRequests.sortedIDs() {
		cr := r.s.d.changeRequests.rows[id]
		if cr.Status != string(domain.ChangePending) {
			continue
		}
		m, ok := r.s.d.members.rows[cr.MemberID]
		if !ok || !inScope(scope, m.Mandalam) {
			continue
		}
		cr.Member = &m
		list = append(list, &cr)
	}
	return page(list, offset, limit), int64(len(list)), nil
}

type yearRepo struct{ s *Store }

func (r *yearRepo) Create(ctx context.Context, y *models.YearConfig) error {
	defer r.s.lock()()
	if err := r.s.fail("years.Create"); err != nil {
		return err
	}
	for _, row := range r.s.d.years.rows {
		if row.Year == y.Year {
			return gorm.ErrDuplicatedKey
		}
	}
	y.ID = r.s.d.years.nextID()
	y.CreatedAt = now()
	y.UpdatedAt = y.CreatedAt
	r.s.d.years.rows[y.ID] = *y
	return nil
}

func (r *yearRepo) GetByYear(ctx context.Context, year int) (*models.YearConfig, error) {
	defer r.s.lock()()
	for _, y := range r.s.d.years.rows {
		if y.Year == year {
			return &y, nil
		}
	}
	return nil, notFound()
}

func (r *yearRepo) GetActive(ctx context.Context) (*models.YearConfig, error) {
	defer r.s.lock()()
	var best *models.YearConfig
	for _, y := range r.s.d.years.rows {
		if y.IsActive && (best == nil || y.Year > best.Year) {
			y := y
			best = &y
		}
	}
	if best == nil {
		return nil, notFound()
	}
	return best, nil
}

func (r *yearRepo) List(ctx context.Context) ([]*models.YearConfig, error) {
	defer r.s.lock()()
	var list []*models.YearConfig
	for _, y := range r.s.d.years.rows {
		y := y
		list = append(list, &y)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Year > list[j].Year })
	return list, nil
}

func (r *yearRepo) DeactivateAll(ctx context.Context) error {
	defer r.s.lock()()
	for id, y := range r.s.d.years.rows {
		if y.IsActive {
			y.IsActive = false
			r.s.d.years.rows[id] = y
		}
	}
	return nil
}

func (r *yearRepo) Activate(ctx context.Context, year int) error {
	defer r.s.lock()()
	if err := r.s.fail("years.Activate"); err != nil {
		return err
	}
	for id, y := range r.s.d.years.rows {
		if y.Year == year {
			y.IsActive = true
			r.s.d.years.rows[id] = y
			return nil
		}
	}
	return notFound()
}
