package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttendancePubSub broadcasts seat-state changes so dashboards can refresh
// without polling.
type AttendancePubSub struct {
	rdb     *redis.Client
	channel string
}

func NewAttendancePubSub(rdb *redis.Client) *AttendancePubSub {
	return &AttendancePubSub{
		rdb:     rdb,
		channel: ChannelAttendanceChanged(),
	}
}

type attendanceChangedMsg struct {
	Type     string `json:"type"`
	MemberID string `json:"member_id"`
	SeatID   string `json:"seat_id"`
	TsUnix   int64  `json:"ts_unix"`
}

func (p *AttendancePubSub) PublishCheckIn(ctx context.Context, memberID, seatID string) error {
	return p.publish(ctx, "check_in", memberID, seatID)
}

func (p *AttendancePubSub) PublishCheckOut(ctx context.Context, memberID, seatID string) error {
	return p.publish(ctx, "check_out", memberID, seatID)
}

func (p *AttendancePubSub) publish(ctx context.Context, kind, memberID, seatID string) error {
	msg := attendanceChangedMsg{
		Type:     kind,
		MemberID: memberID,
		SeatID:   seatID,
		TsUnix:   time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *AttendancePubSub) Subscribe(
	ctx context.Context,
	handler func(ctx context.Context, kind, memberID, seatID string),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev attendanceChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.MemberID != "" {
				handler(ctx, ev.Type, ev.MemberID, ev.SeatID)
			}
		}
	}
}
