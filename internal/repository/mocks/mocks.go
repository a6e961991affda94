// Package mocks provides testify mocks for the feed repositories.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ganot/feedline/internal/domain/feed"
)

// ActivityRepository is a mock for feed.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Insert(ctx context.Context, items []feed.RawActivityItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *ActivityRepository) List(ctx context.Context, after feed.Cursor, limit int) (feed.Page, error) {
	args := m.Called(ctx, after, limit)
	if page, ok := args.Get(0).(feed.Page); ok {
		return page, args.Error(1)
	}
	return feed.Page{}, args.Error(1)
}

// SessionRepository is a mock for feed.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Upsert(ctx context.Context, nodes []feed.SessionNode) error {
	args := m.Called(ctx, nodes)
	return args.Error(0)
}

func (m *SessionRepository) List(ctx context.Context) ([]feed.SessionNode, error) {
	args := m.Called(ctx)
	if nodes, ok := args.Get(0).([]feed.SessionNode); ok {
		return nodes, args.Error(1)
	}
	return nil, args.Error(1)
}

// InitiativeRepository is a mock for feed.InitiativeRepository.
type InitiativeRepository struct {
	mock.Mock
}

func (m *InitiativeRepository) Upsert(ctx context.Context, initiatives []feed.Initiative) error {
	args := m.Called(ctx, initiatives)
	return args.Error(0)
}

func (m *InitiativeRepository) List(ctx context.Context) ([]feed.Initiative, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]feed.Initiative); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
