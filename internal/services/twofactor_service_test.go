package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
)

// --- фейки ---

type fakeDriverRepo struct {
	repositories.DriverRepository
	mu      sync.Mutex
	byEmail map[string]*models.Driver
	refresh map[int]string
}

func newFakeDriverRepo(drivers ...*models.Driver) *fakeDriverRepo {
	r := &fakeDriverRepo{byEmail: map[string]*models.Driver{}, refresh: map[int]string{}}
	for _, d := range drivers {
		r.byEmail[d.Email] = d
	}
	return r
}

func (r *fakeDriverRepo) GetByEmail(email string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *fakeDriverRepo) UpdateRefresh(driverID int, token string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh[driverID] = token
	return nil
}

type fakeCodeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []*models.LoginCode
}

func (r *fakeCodeRepo) InvalidateActive(driverID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, c := range r.rows {
		if c.DriverID == driverID && !c.Used {
			continue
		}
		kept = append(kept, c)
	}
	r.rows = kept
	return nil
}

func (r *fakeCodeRepo) Create(driverID int, code string, expiresAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.rows = append(r.rows, &models.LoginCode{
		ID:        r.nextID,
		DriverID:  driverID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	return r.nextID, nil
}

func (r *fakeCodeRepo) GetActive(driverID int) (*models.LoginCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.LoginCode
	for _, c := range r.rows {
		if c.DriverID != driverID || c.Used || !c.ExpiresAt.After(time.Now()) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *fakeCodeRepo) MarkUsed(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			if c.Used {
				return false, nil
			}
			c.Used = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCodeRepo) DeleteExpired(grace time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-grace)
	kept := r.rows[:0]
	for _, c := range r.rows {
		if c.ExpiresAt.Before(cutoff) {
			continue
		}
		kept = append(kept, c)
	}
	r.rows = kept
	return nil
}

func (r *fakeCodeRepo) active(driverID int) []*models.LoginCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*models.LoginCode
	for _, c := range r.rows {
		if c.DriverID == driverID && !c.Used && c.ExpiresAt.After(time.Now()) {
			res = append(res, c)
		}
	}
	return res
}

type fakeAttemptRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []models.LoginAttempt
	failOn bool // имитируем недоступность журнала
}

func (r *fakeAttemptRepo) Create(identifier string) (*models.LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn {
		return nil, errors.New("ledger down")
	}
	r.nextID++
	a := models.LoginAttempt{ID: r.nextID, Identifier: identifier, AttemptTime: time.Now(), CreatedAt: time.Now()}
	r.rows = append(r.rows, a)
	return &a, nil
}

func (r *fakeAttemptRepo) CountSince(identifier string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.rows {
		if a.Identifier == identifier && !a.AttemptTime.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttemptRepo) DeleteOlderThan(age time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-age)
	kept := r.rows[:0]
	for _, a := range r.rows {
		if a.AttemptTime.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	r.rows = kept
	return nil
}

func (r *fakeAttemptRepo) count(identifier string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.rows {
		if a.Identifier == identifier {
			n++
		}
	}
	return n
}

func (r *fakeAttemptRepo) backdate(identifier string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].Identifier == identifier {
			r.rows[i].AttemptTime = r.rows[i].AttemptTime.Add(-d)
		}
	}
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string // коды в порядке отправки
	fail bool
}

func (f *fakeEmail) SendLoginCodeEmail(_, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, code)
	return nil
}

func (f *fakeEmail) SendWelcomeEmail(_, _ string) error { return nil }

func (f *fakeEmail) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestService(drivers ...*models.Driver) (*TwoFactorService, *fakeCodeRepo, *fakeAttemptRepo, *fakeEmail) {
	codes := &fakeCodeRepo{}
	attempts := &fakeAttemptRepo{}
	emails := &fakeEmail{}
	svc := NewTwoFactorService(newFakeDriverRepo(drivers...), codes, attempts, emails, nil)
	return svc, codes, attempts, emails
}

var testDriver = &models.Driver{ID: 7, FullName: "Denny Parsons", Email: "denny@dockside.test", RoleID: 10}

// --- тесты ---

func TestRequestCodeKeepsSingleActiveCode(t *testing.T) {
	svc, codes, _, emails := newTestService(testDriver)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RequestCode(testDriver.Email))
	}

	require.Equal(t, 3, emails.sentCount())
	require.Len(t, codes.active(testDriver.ID), 1, "после серии запросов активный код ровно один")

	// и письмо с последним кодом совпадает с тем, что в базе
	active, err := codes.GetActive(testDriver.ID)
	require.NoError(t, err)
	require.Equal(t, emails.sent[len(emails.sent)-1], active.Code)
}

func TestVerifyCodeSucceedsExactlyOnce(t *testing.T) {
	svc, codes, _, _ := newTestService(testDriver)

	require.NoError(t, svc.RequestCode(testDriver.Email))
	active, err := codes.GetActive(testDriver.ID)
	require.NoError(t, err)
	require.Len(t, active.Code, 6)

	driver, err := svc.VerifyCode(testDriver.Email, active.Code)
	require.NoError(t, err)
	require.Equal(t, testDriver.ID, driver.ID)

	// повторная проверка того же кода — отказ
	_, err = svc.VerifyCode(testDriver.Email, active.Code)
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestVerifyCodeConcurrentSingleWinner(t *testing.T) {
	svc, codes, _, _ := newTestService(testDriver)

	require.NoError(t, svc.RequestCode(testDriver.Email))
	active, err := codes.GetActive(testDriver.ID)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.VerifyCode(testDriver.Email, active.Code)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrCodeInvalid)
		}
	}
	require.Equal(t, 1, wins, "при гонке код принимается ровно один раз")
}

func TestRequestCodeRateLimited(t *testing.T) {
	svc, _, attempts, emails := newTestService(testDriver)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RequestCode(testDriver.Email))
	}
	err := svc.RequestCode(testDriver.Email)
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, 5, emails.sentCount(), "шестое письмо не уходит")

	// окно прошло — снова можно
	attempts.backdate(testDriver.Email, 16*time.Minute)
	require.NoError(t, svc.RequestCode(testDriver.Email))
	require.Equal(t, 6, emails.sentCount())
}

func TestVerifyCodeRateLimited(t *testing.T) {
	svc, codes, attempts, _ := newTestService(testDriver)

	require.NoError(t, svc.RequestCode(testDriver.Email))
	active, err := codes.GetActive(testDriver.ID)
	require.NoError(t, err)

	// доводим счётчик до порога проверок
	for i := 0; i < 9; i++ {
		_, err := svc.VerifyCode(testDriver.Email, "000000")
		require.ErrorIs(t, err, ErrCodeInvalid)
	}
	require.Equal(t, 10, attempts.count(testDriver.Email)) // 1 выдача + 9 промахов

	// даже правильный код отклоняется, и попытка не пишется
	_, err = svc.VerifyCode(testDriver.Email, active.Code)
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, 10, attempts.count(testDriver.Email))
}

func TestRequestCodeUnknownEmailSilent(t *testing.T) {
	svc, codes, attempts, emails := newTestService(testDriver)

	require.NoError(t, svc.RequestCode("nobody@dockside.test"))

	require.Equal(t, 0, emails.sentCount())
	require.Empty(t, codes.rows)
	require.Equal(t, 0, attempts.count("nobody@dockside.test"))
}

func TestVerifyCodeUnknownEmailRecordsAttempt(t *testing.T) {
	svc, _, attempts, _ := newTestService(testDriver)

	_, err := svc.VerifyCode("nobody@dockside.test", "123456")
	require.ErrorIs(t, err, ErrCodeInvalid)
	require.Equal(t, 1, attempts.count("nobody@dockside.test"))
}

func TestVerifyCodeExpiredRecordsAttempt(t *testing.T) {
	svc, codes, attempts, _ := newTestService(testDriver)

	// кладём уже протухший код напрямую
	_, err := codes.Create(testDriver.ID, "111222", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.VerifyCode(testDriver.Email, "111222")
	require.ErrorIs(t, err, ErrCodeInvalid)
	require.Equal(t, 1, attempts.count(testDriver.Email))
}

func TestVerifyCodeMismatchRecordsAttempt(t *testing.T) {
	svc, _, attempts, _ := newTestService(testDriver)

	require.NoError(t, svc.RequestCode(testDriver.Email))
	before := attempts.count(testDriver.Email)

	_, err := svc.VerifyCode(testDriver.Email, "999999")
	require.ErrorIs(t, err, ErrCodeInvalid)
	require.Equal(t, before+1, attempts.count(testDriver.Email))
}

func TestRequestCodeDispatchFailedKeepsCode(t *testing.T) {
	svc, codes, _, emails := newTestService(testDriver)
	emails.fail = true

	err := svc.RequestCode(testDriver.Email)
	require.ErrorIs(t, err, ErrDispatchFailed)
	// код остаётся в базе: клиент может запросить повторную отправку
	require.Len(t, codes.active(testDriver.ID), 1)
}

func TestVerifyCodeLedgerDownDoesNotBlock(t *testing.T) {
	svc, _, attempts, _ := newTestService(testDriver)
	attempts.failOn = true

	// журнал лежит, но пользовательский ответ остаётся прежним
	_, err := svc.VerifyCode(testDriver.Email, "123456")
	require.ErrorIs(t, err, ErrCodeInvalid)
}
