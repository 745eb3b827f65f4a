package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/limiter"
	"github.com/portaltarot/oraculo/internal/model"
	"github.com/portaltarot/oraculo/internal/repository"
)

type fakeUserRepo struct {
	byID      map[uuid.UUID]*model.Profile
	createErr error
	updErr    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*model.Profile{}}
}

func (f *fakeUserRepo) Create(_ context.Context, p *model.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.byID {
		if e.Username == p.Username {
			return errs.ErrAlreadyExists
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.Profile, error) {
	for _, p := range f.byID {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context, limit int) ([]model.Profile, error) {
	out := make([]model.Profile, 0, len(f.byID))
	for _, p := range f.byID {
		if len(out) == limit {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	if f.updErr != nil {
		return nil, f.updErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if upd.DisplayName != nil {
		p.DisplayName = *upd.DisplayName
	}
	if upd.Archetype != nil {
		p.Archetype = *upd.Archetype
	}
	if upd.Element != nil {
		p.Element = *upd.Element
	}
	if upd.Relationship != nil {
		p.Relationship = *upd.Relationship
	}
	if upd.Bio != nil {
		p.Bio = upd.Bio
	}
	cp := *p
	return &cp, nil
}

func (f *fakeUserRepo) AddXP(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	p, ok := f.byID[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	p.XP += delta
	return p.XP, nil
}

func (f *fakeUserRepo) AddOuros(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	p, ok := f.byID[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	p.Ouros += delta
	return p.Ouros, nil
}

type fakeLimiter struct {
	allow          bool
	blockOnFailure bool
	allowCalls     int
	successCalls   int
	failureCalls   int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (f *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	f.allowCalls++
	return f.allow, 0, nil
}

func (f *fakeLimiter) Success(context.Context, string, []byte) error {
	f.successCalls++
	return nil
}

func (f *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	f.failureCalls++
	return f.blockOnFailure, time.Minute, nil
}
