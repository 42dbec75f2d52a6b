package memstore

import (
	"context"
	"sort"
	"strings"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(ctx context.Context, m *models.Member) error {
	defer r.s.lock()()
	if err := r.s.fail("members.Create"); err != nil {
		return err
	}
	for _, row := range r.s.d.members.rows {
		if row.Email == m.Email || row.Phone == m.Phone || row.EmiratesID == m.EmiratesID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.ID = r.s.d.members.nextID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	m.UpdatedAt = now()
	r.s.d.members.rows[m.ID] = *m
	return nil
}

func (r *memberRepo) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	defer r.s.lock()()
	m, ok := r.s.d.members.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &m, nil
}

func (r *memberRepo) GetByLogin(ctx context.Context, login string) (*models.Member, error) {
	defer r.s.lock()()
	for _, id := range r.s.d.members.sortedIDs() {
		m := r.s.d.members.rows[id]
		if m.Email == login || m.Phone == login {
			return &m, nil
		}
	}
	return nil, notFound()
}

func (r *memberRepo) Update(ctx context.Context, m *models.Member) error {
	defer r.s.lock()()
	if err := r.s.fail("members.Update"); err != nil {
		return err
	}
	if _, ok := r.s.d.members.rows[m.ID]; !ok {
		return notFound()
	}
	for id, row := range r.s.d.members.rows {
		if id != m.ID && (row.Phone == m.Phone || row.Email == m.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	m.UpdatedAt = now()
	r.s.d.members.rows[m.ID] = *m
	return nil
}

func (r *memberRepo) ExistsByIdentity(ctx context.Context, email, phone, emiratesID string) (bool, error) {
	defer r.s.lock()()
	for _, m := range r.s.d.members.rows {
		if m.Email == email || m.Phone == phone || m.EmiratesID == emiratesID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memberRepo) ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error) {
	defer r.s.lock()()
	for id, m := range r.s.d.members.rows {
		if id != excludeID && m.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func matchMember(m models.Member, f repositories.MemberFilter) bool {
	if !inScope(f.Scope, m.Mandalam) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hit := false
		for _, v := range []string{m.Name, m.Email, m.Phone, m.RegNo, m.EmiratesID} {
			if strings.Contains(strings.ToLower(v), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.Paid != nil && m.PaymentStatus != *f.Paid {
		return false
	}
	if f.PaymentApproval != "" && m.PaymentApprovalStatus != f.PaymentApproval {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == m.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *memberRepo) List(ctx context.Context, f repositories.MemberFilter) ([]*models.Member, int64, error) {
	defer r.s.lock()()
	if err := r.s.fail("members.List"); err != nil {
		return nil, 0, err
	}
	ids := r.s.d.members.sortedIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var matched []*models.Member
	for _, id := range ids {
		m := r.s.d.members.rows[id]
		if matchMember(m, f) {
			matched = append(matched, &m)
		}
	}
	return page(matched, f.Offset, f.Limit), int64(len(matched)), nil
}

func (r *memberRepo) ListIDs(ctx context.Context) ([]uint, error) {
	defer r.s.lock()()
	return r.s.d.members.sortedIDs(), nil
}

func (r *memberRepo) MarkRenewalPending(ctx context.Context) (int64, error) {
	defer r.s.lock()()
	if err := r.s.fail("members.MarkRenewalPending"); err != nil {
		return 0, err
	}
	var n int64
	for id, m := range r.s.d.members.rows {
		if m.Status != string(domain.StatusApproved) {
			continue
		}
		m.Status = string(domain.StatusRenewalPending)
		m.IsReregistration = true
		m.ClearPaymentSubmission()
		m.UpdatedAt = now()
		r.s.d.members.rows[id] = m
		n++
	}
	return n, nil
}

func (r *memberRepo) Stats(ctx context.Context, scope domain.Scope) (*repositories.MemberStats, error) {
	defer r.s.lock()()
	stats := &repositories.MemberStats{ByStatus: map[string]int64{}}
	for _, m := range r.s.d.members.rows {
		if !inScope(scope, m.Mandalam) {
			continue
		}
		stats.Total++
		stats.ByStatus[m.Status]++
		if m.PaymentStatus {
			stats.Paid++
		} else {
			stats.Unpaid++
		}
		if m.PaymentApprovalStatus == string(domain.PaymentPending) {
			stats.PendingPayments++
		}
	}
	return stats, nil
}

type roleRepo struct{ s *Store }

func (r *roleRepo) GetByMemberID(ctx context.Context, memberID uint) (*models.UserRole, error) {
	defer r.s.lock()()
	for _, role := range r.s.d.roles.rows {
		if role.MemberID == memberID {
			return &role, nil
		}
	}
	return nil, notFound()
}

func (r *roleRepo) Save(ctx context.Context, role *models.UserRole) error {
	defer r.s.lock()()
	if err := r.s.fail("roles.Save"); err != nil {
		return err
	}
	if role.ID == 0 {
		for _, existing := range r.s.d.roles.rows {
			if existing.MemberID == role.MemberID {
				return gorm.ErrDuplicatedKey
			}
		}
		role.ID = r.s.d.roles.nextID()
		role.CreatedAt = now()
	}
	role.UpdatedAt = now()
	r.s.d.roles.rows[role.ID] = *role
	return nil
}

func (r *roleRepo) ListAdmins(ctx context.Context) ([]*models.UserRole, error) {
	defer r.s.lock()()
	var list []*models.UserRole
	for _, id := range r.s.d.roles.sortedIDs() {
		role := r.s.d.roles.rows[id]
		if role.Role != string(domain.RoleUser) {
			list = append(list, &role)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].MemberID < list[j].MemberID })
	return list, nil
}
