package redisx

import "fmt"

const ns = "studyhall:v1"

func KeyOccupancy() string {
	return ns + ":reports:occupancy"
}

func KeySubscriptionStats() string {
	return ns + ":reports:subscriptions"
}

func KeySeatMap() string {
	return ns + ":seats:map"
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelAttendanceChanged() string {
	return ns + ":attendance:changed"
}
