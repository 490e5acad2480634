package monitoring

const (
	checkinResultAwarded  = "awarded"
	checkinResultRepeated = "already_checked_in"
)

// ObserveCheckin records one check-in attempt. It satisfies the ledger's
// observer hook.
func (m *Metrics) ObserveCheckin(alreadyCheckedIn bool, pointsAwarded int) {
	if alreadyCheckedIn {
		m.checkinsRepeated.Add(1)
		m.checkins.WithLabelValues(checkinResultRepeated).Inc()
		return
	}
	m.checkinsAwarded.Add(1)
	m.checkins.WithLabelValues(checkinResultAwarded).Inc()
	if pointsAwarded > 0 {
		m.pointsAwarded.Add(float64(pointsAwarded))
	}
}

type CheckinStats struct {
	Awarded  uint64
	Repeated uint64
}

func (m *Metrics) checkinStats() CheckinStats {
	return CheckinStats{Awarded: m.checkinsAwarded.Load(), Repeated: m.checkinsRepeated.Load()}
}
