package service

import (
	redisx "github.com/kdanyliuk/studyhall/internal/redis"
	postgres "github.com/kdanyliuk/studyhall/internal/repository/postgres"
	redis "github.com/kdanyliuk/studyhall/internal/repository/redis"
	"github.com/kdanyliuk/studyhall/internal/service/attendance"
	"github.com/kdanyliuk/studyhall/internal/service/members"
	"github.com/kdanyliuk/studyhall/internal/service/reports"
	"github.com/kdanyliuk/studyhall/internal/service/seating"
	"github.com/kdanyliuk/studyhall/internal/service/subscriptions"
)

type Services struct {
	Attendance    *attendance.Service
	Members       *members.Service
	Subscriptions *subscriptions.Service
	Seating       *seating.Service
	Reports       *reports.Service
}

type Config struct {
	Members       members.Config
	Subscriptions subscriptions.Config
	Seating       seating.Config
	Reports       reports.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redisx.AttendancePubSub,
	limiter *redis.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Attendance:    attendance.New(store.Attendance(), cache, pubsub, limiter),
		Members:       members.New(store.Members(), cfg.Members),
		Subscriptions: subscriptions.New(store, cache, cfg.Subscriptions),
		Seating:       seating.New(store, cfg.Seating),
		Reports:       reports.New(store, cache, cfg.Reports),
	}
}
