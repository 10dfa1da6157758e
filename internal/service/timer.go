package service

import "time"

type Timer interface {
	Now() time.Time
	UTCDateNDaysAgo(days int) time.Time
}

type systemTimer struct{}

func NewTimer() Timer {
	return systemTimer{}
}

func (systemTimer) Now() time.Time {
	return time.Now().UTC()
}

func (t systemTimer) UTCDateNDaysAgo(days int) time.Time {
	return t.Now().AddDate(0, 0, -days)
}
