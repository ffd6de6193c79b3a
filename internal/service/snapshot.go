package service

import (
	"riderapp/internal/domain"
)

// StatusUpdate is one poll result. Nil fields mean the poll did not report
// that field, not that the field cleared.
type StatusUpdate struct {
	Seq            uint64
	RideStatus     *domain.RideStatus
	PaymentStatus  *domain.PaymentStatus
	DriverLocation *domain.LatLng
	Detail         *domain.Ride
}

// Snapshot is the merged view of a tracked ride. Fields hold the last
// value any update reported for them.
type Snapshot struct {
	RideID         string
	Seq            uint64
	RideStatus     domain.RideStatus
	PaymentStatus  domain.PaymentStatus
	DriverLocation *domain.LatLng
	Detail         *domain.Ride
}

// merge folds an update into the snapshot. Updates older than the snapshot
// are discarded whole; fields the update omits keep their previous value.
// It reports whether the update was applied.
func (s *Snapshot) merge(u StatusUpdate) bool {
	if u.Seq <= s.Seq && s.Seq != 0 {
		return false
	}
	s.Seq = u.Seq

	if u.RideStatus != nil {
		s.RideStatus = *u.RideStatus
	}
	if u.PaymentStatus != nil {
		s.PaymentStatus = *u.PaymentStatus
	}
	if u.DriverLocation != nil {
		s.DriverLocation = u.DriverLocation
	}
	if u.Detail != nil {
		s.Detail = u.Detail
		if u.Detail.Status != "" && u.RideStatus == nil {
			s.RideStatus = u.Detail.Status
		}
		if u.Detail.PaymentStatus != "" && u.PaymentStatus == nil {
			s.PaymentStatus = u.Detail.PaymentStatus
		}
	}
	return true
}
