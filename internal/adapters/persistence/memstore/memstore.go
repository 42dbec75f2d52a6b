// Package memstore is an in-memory repositories.Store used by service and
// handler tests and by the local demo mode. Rows are stored by value, so
// callers never share memory with the store. WithTx snapshots every table and
// restores the snapshot when the callback fails. While a transaction is open,
// calls made outside it wait, so a rollback never discards their writes.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// table holds the rows of one model keyed by primary key
type table[T any] struct {
	rows map[uint]T
	next uint
}

func newTable[T any]() table[T] {
	return table[T]{rows: map[uint]T{}}
}

func (t table[T]) clone() table[T] {
	rows := make(map[uint]T, len(t.rows))
	for k, v := range t.rows {
		rows[k] = v
	}
	return table[T]{rows: rows, next: t.next}
}

func (t *table[T]) nextID() uint {
	t.next++
	return t.next
}

// sortedIDs returns the keys in ascending order
func (t table[T]) sortedIDs() []uint {
	ids := make([]uint, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type data struct {
	members        table[models.Member]
	roles          table[models.UserRole]
	notifications  table[models.Notification]
	benefits       table[models.BenefitUsage]
	changeRequests table[models.ChangeRequest]
	years          table[models.YearConfig]
	templates      table[models.MessageTemplate]
	recipients     table[models.PaymentRecipient]
	questions      table[models.RegistrationQuestion]
	cardTemplates  table[models.CardTemplate]
	refreshTokens  table[models.RefreshToken]
}

func (d *data) clone() *data {
	return &data{
		members:        d.members.clone(),
		roles:          d.roles.clone(),
		notifications:  d.notifications.clone(),
		benefits:       d.benefits.clone(),
		changeRequests: d.changeRequests.clone(),
		years:          d.years.clone(),
		templates:      d.templates.clone(),
		recipients:     d.recipients.clone(),
		questions:      d.questions.clone(),
		cardTemplates:  d.cardTemplates.clone(),
		refreshTokens:  d.refreshTokens.clone(),
	}
}

// Store is the in-memory implementation of repositories.Store. The Store
// handed to a WithTx callback shares state with its parent and skips the
// transaction gate.
type Store struct {
	*state
	inTx bool
}

type state struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    *data

	// FailOn makes the named operation return the given error, for rollback tests.
	// Keys look like "notifications.CreateBatch".
	FailOn map[string]error
}

// New creates an empty store
func New() *Store {
	return &Store{state: &state{
		d: &data{
			members:        newTable[models.Member](),
			roles:          newTable[models.UserRole](),
			notifications:  newTable[models.Notification](),
			benefits:       newTable[models.BenefitUsage](),
			changeRequests: newTable[models.ChangeRequest](),
			years:          newTable[models.YearConfig](),
			templates:      newTable[models.MessageTemplate](),
			recipients:     newTable[models.PaymentRecipient](),
			questions:      newTable[models.RegistrationQuestion](),
			cardTemplates:  newTable[models.CardTemplate](),
			refreshTokens:  newTable[models.RefreshToken](),
		},
		FailOn: map[string]error{},
	}}
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) Members() repositories.MemberRepository             { return &memberRepo{s} }
func (s *Store) Roles() repositories.RoleRepository                 { return &roleRepo{s} }
func (s *Store) Notifications() repositories.NotificationRepository { return &notificationRepo{s} }
func (s *Store) Benefits() repositories.BenefitRepository           { return &benefitRepo{s} }
func (s *Store) ChangeRequests() repositories.ChangeRequestRepository {
	return &changeRequestRepo{s}
}
func (s *Store) Years() repositories.YearConfigRepository { return &yearRepo{s} }
func (s *Store) Templates() repositories.MessageTemplateRepository {
	return &templateRepo{s}
}
func (s *Store) Recipients() repositories.PaymentRecipientRepository {
	return &recipientRepo{s}
}
func (s *Store) Questions() repositories.QuestionRepository { return &questionRepo{s} }
func (s *Store) CardTemplates() repositories.CardTemplateRepository {
	return &cardTemplateRepo{s}
}
func (s *Store) RefreshTokens() repositories.RefreshTokenRepository { return &refreshTokenRepo{s} }

// WithTx runs fn and restores the previous state when fn fails. Transactions
// are serialized; a WithTx on the callback's store joins the open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(&Store{state: s.state, inTx: true}); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock guards one repository call. Outside a transaction it also waits for
// any open transaction to finish.
func (s *Store) lock() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

// fail returns the injected error for op, if any. Caller holds s.mu.
func (s *Store) fail(op string) error {
	return s.FailOn[op]
}

func now() time.Time { return time.Now() }

func notFound() error { return gorm.ErrRecordNotFound }

func inScope(scope domain.Scope, mandalam string) bool {
	return scope.Allows(strings.TrimSpace(mandalam))
}

func page[T any](list []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
