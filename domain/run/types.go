package run

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"gobandit/domain/core"
)

// CodeVersion is stamped into every fingerprint so results from different learners never collide
const CodeVersion = "mirror-cusum-ensemble/1"

// Member describes one council member in a fingerprint
type Member struct {
	Threshold float64
	Drift     float64
	Seed      int64
}

// Fingerprint identifies a replayable run: same fingerprint, same decisions
type Fingerprint string

// NewFingerprint hashes every parameter that determines a run's decisions
func NewFingerprint(sequence string, rows int, seed int64, window int, council []Member) Fingerprint {
	var b strings.Builder
	fmt.Fprintf(&b, "sequence:%s|rows:%d|seed:%d|window:%d|code:%s", sequence, rows, seed, window, CodeVersion)
	for i, m := range council {
		fmt.Fprintf(&b, "|m%d:%g/%g/%d", i, m.Threshold, m.Drift, m.Seed)
	}
	hash := sha256.Sum256([]byte(b.String()))
	return Fingerprint(fmt.Sprintf("%x", hash))
}

// Round records one select/update cycle
type Round struct {
	Round  int      `json:"round"`
	Arm    core.Arm `json:"arm"`
	Reward float64  `json:"reward"`
	Leader int      `json:"leader"`
}

// Result is the outcome of evaluating one ensemble over one reward sequence
type Result struct {
	ID             core.RunID  `db:"id" json:"id"`
	Sequence       string      `db:"sequence_name" json:"sequence"`
	Seed           int64       `db:"seed" json:"seed"`
	Window         int         `db:"window_size" json:"window"`
	Rounds         int         `db:"rounds" json:"rounds"`
	TotalReward    float64     `db:"total_reward" json:"total_reward"`
	PullsArm0      int         `db:"pulls_arm0" json:"pulls_arm0"`
	PullsArm1      int         `db:"pulls_arm1" json:"pulls_arm1"`
	LeaderSwitches int         `db:"leader_switches" json:"leader_switches"`
	Resets         int         `db:"resets" json:"resets"`
	FinalLeader    int         `db:"final_leader" json:"final_leader"`
	Fingerprint    Fingerprint `db:"fingerprint" json:"fingerprint"`
	DurationMS     int64       `db:"duration_ms" json:"duration_ms"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	Trace          []Round     `db:"-" json:"trace,omitempty"`
}

// MeanReward returns the average reward per round
func (r *Result) MeanReward() float64 {
	if r.Rounds == 0 {
		return 0
	}
	return r.TotalReward / float64(r.Rounds)
}

// Summary aggregates total reward over every seed evaluated on one sequence
type Summary struct {
	Sequence string  `json:"sequence"`
	Runs     int     `json:"runs"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	P10      float64 `json:"p10"`
	P90      float64 `json:"p90"`
}
