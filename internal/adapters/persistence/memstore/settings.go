package memstore

import (
	"context"
	"sort"
	"time"

	"membership-portal/internal/adapters/persistence/models"
)

type templateRepo struct{ s *Store }

func (r *templateRepo) Create(ctx context.Context, t *models.MessageTemplate) error {
	defer r.s.lock()()
	t.ID = r.s.d.templates.nextID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	r.s.d.templates.rows[t.ID] = *t
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id uint) (*models.MessageTemplate, error) {
	defer r.s.lock()()
	t, ok := r.s.d.templates.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &t, nil
}

func (r *templateRepo) Update(ctx context.Context, t *models.MessageTemplate) error {
	defer r.s.lock()()
	if _, ok := r.s.d.templates.rows[t.ID]; !ok {
		return notFound()
	}
	t.UpdatedAt = now()
	r.s.d.templates.rows[t.ID] = *t
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, id uint) error {
	defer r.s.lock()()
	delete(r.s.d.templates.rows, id)
	return nil
}

func (r *templateRepo) List(ctx context.Context) ([]*models.MessageTemplate, error) {
	defer r.s.lock()()
	var list []*models.MessageTemplate
	for _, id := range r.s.d.templates.sortedIDs() {
		t := r.s.d.templates.rows[id]
		list = append(list, &t)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type recipientRepo struct{ s *Store }

func (r *recipientRepo) Create(ctx context.Context, p *models.PaymentRecipient) error {
	defer r.s.lock()()
	p.ID = r.s.d.recipients.nextID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	r.s.d.recipients.rows[p.ID] = *p
	return nil
}

func (r *recipientRepo) GetByID(ctx context.Context, id uint) (*models.PaymentRecipient, error) {
	defer r.s.lock()()
	p, ok := r.s.d.recipients.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &p, nil
}

func (r *recipientRepo) Update(ctx context.Context, p *models.PaymentRecipient) error {
	defer r.s.lock()()
	if _, ok := r.s.d.recipients.rows[p.ID]; !ok {
		return notFound()
	}
	p.UpdatedAt = now()
	r.s.d.recipients.rows[p.ID] = *p
	return nil
}

func (r *recipientRepo) Delete(ctx context.Context, id uint) error {
	defer r.s.lock()()
	delete(r.s.d.recipients.rows, id)
	return nil
}

func (r *recipientRepo) List(ctx context.Context, activeOnly bool) ([]*models.PaymentRecipient, error) {
	defer r.s.lock()()
	var list []*models.PaymentRecipient
	for _, id := range r.s.d.recipients.sortedIDs() {
		p := r.s.d.recipients.rows[id]
		if activeOnly && !p.IsActive {
			continue
		}
		list = append(list, &p)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type questionRepo struct{ s *Store }

func (r *questionRepo) Create(ctx context.Context, q *models.RegistrationQuestion) error {
	defer r.s.lock()()
	q.ID = r.s.d.questions.nextID()
	q.CreatedAt = now()
	q.UpdatedAt = q.CreatedAt
	r.s.d.questions.rows[q.ID] = *q
	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id uint) (*models.RegistrationQuestion, error) {
	defer r.s.lock()()
	q, ok := r.s.d.questions.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &q, nil
}

func (r *questionRepo) Update(ctx context.Context, q *models.RegistrationQuestion) error {
	defer r.s.lock()()
	if _, ok := r.s.d.questions.rows[q.ID]; !ok {
		return notFound()
	}
	q.UpdatedAt = now()
	r.s.d.questions.rows[q.ID] = *q
	return nil
}

func (r *questionRepo) Delete(ctx context.Context, id uint) error {
	defer r.s.lock()()
	delete(r.s.d.questions.rows, id)
	return nil
}

func (r *questionRepo) List(ctx context.Context, activeOnly bool) ([]*models.RegistrationQuestion, error) {
	defer r.s.lock()()
	var list []*models.RegistrationQuestion
	for _, id := range r.s.d.questions.sortedIDs() {
		q := r.s.d.questions.rows[id]
		if activeOnly && !q.IsActive {
			continue
		}
		list = append(list, &q)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	return list, nil
}

type cardTemplateRepo struct{ s *Store }

func (r *cardTemplateRepo) Create(ctx context.Context, t *models.CardTemplate) error {
	defer r.s.lock()()
	t.ID = r.s.d.cardTemplates.nextID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	r.s.d.cardTemplates.rows[t.ID] = *t
	return nil
}

func (r *cardTemplateRepo) GetByID(ctx context.Context, id uint) (*models.CardTemplate, error) {
	defer r.s.lock()()
	t, ok := r.s.d.cardTemplates.rows[id]
	if !ok {
		return nil, notFound()
	}
	return &t, nil
}

func (r *cardTemplateRepo) Update(ctx context.Context, t *models.CardTemplate) error {
	defer r.s.lock()()
	if _, ok := r.s.d.cardTemplates.rows[t.ID]; !ok {
		return notFound()
	}
	t.UpdatedAt = now()
	r.s.d.cardTemplates.rows[t.ID] = *t
	return nil
}

func (r *cardTemplateRepo) Delete(ctx context.Context, id uint) error {
	defer r.s.lock()()
	delete(r.s.d.cardTemplates.rows, id)
	return nil
}

func (r *cardTemplateRepo) List(ctx context.Context) ([]*models.CardTemplate, error) {
	defer r.s.lock()()
	ids := r.s.d.cardTemplates.sortedIDs()
	var list []*models.CardTemplate
	for i := len(ids) - 1; i >= 0; i-- {
		t := r.s.d.cardTemplates.rows[ids[i]]
		list = append(list, &t)
	}
	return list, nil
}

func (r *cardTemplateRepo) GetActive(ctx context.Context) (*models.CardTemplate, error) {
	defer r.s.lock()()
	for _, id := range r.s.d.cardTemplates.sortedIDs() {
		t := r.s.d.cardTemplates.rows[id]
		if t.IsActive {
			return &t, nil
		}
	}
	return nil, notFound()
}

func (r *cardTemplateRepo) DeactivateAll(ctx context.Context) error {
	defer r.s.lock()()
	for id, t := range r.s.d.cardTemplates.rows {
		t.IsActive = false
		r.s.d.cardTemplates.rows[id] = t
	}
	return nil
}

type refreshTokenRepo struct{ s *Store }

func (r *refreshTokenRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	defer r.s.lock()()
	t.ID = r.s.d.refreshTokens.nextID()
	t.CreatedAt = now()
	r.s.d.refreshTokens.rows[t.ID] = *t
	return nil
}

func (r *refreshTokenRepo) GetByTokenHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	defer r.s.lock()()
	for _, t := range r.s.d.refreshTokens.rows {
		if t.TokenHash == hash && t.RevokedAt == nil {
			return &t, nil
		}
	}
	return nil, notFound()
}

func (r *refreshTokenRepo) revokeWhere(match func(models.RefreshToken) bool) {
	t := now()
	for id, row := range r.s.d.refreshTokens.rows {
		if row.RevokedAt == nil && match(row) {
			row.RevokedAt = &t
			r.s.d.refreshTokens.rows[id] = row
		}
	}
}

func (r *refreshTokenRepo) RevokeByTokenHash(ctx context.Context, hash string) error {
	defer r.s.lock()()
	r.revokeWhere(func(t models.RefreshToken) bool { return t.TokenHash == hash })
	return nil
}

func (r *refreshTokenRepo) RevokeAllByMemberID(ctx context.Context, memberID uint) error {
	defer r.s.lock()()
	r.revokeWhere(func(t models.RefreshToken) bool { return t.MemberID == memberID })
	return nil
}

func (r *refreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	defer r.s.lock()()
	var n int64
	cutoff := time.Now()
	for id, t := range r.s.d.refreshTokens.rows {
		if t.ExpiresAt.Before(cutoff) || t.RevokedAt != nil {
			delete(r.s.d.refreshTokens.rows, id)
			n++
		}
	}
	return n, nil
}
