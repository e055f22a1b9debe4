// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package evaluate

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/tomtom215/eventrec/internal/recommend"
)

// DateLayout is the calendar date format used in reports.
const DateLayout = "2006-01-02"

// Add is a calendar add joined with the event's start time.
type Add struct {
	UserID          string
	EventID         int64
	SelectionSource string
	StartTime       time.Time
}

// Participant is an A/B assignment joined with the user's subscription.
type Participant struct {
	UserID     string
	TestFlag   bool
	Subscribed bool
}

// WeeklyAdds is how many events a user added in the week starting Week.
type WeeklyAdds struct {
	UserID string
	Adds   int
	Week   time.Time
}

// Metric compares one statistic before and after deployment for one
// side of the experiment.
type Metric struct {
	Metric string  `json:"metric"`
	Recs   bool    `json:"recs"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Report is the production evaluation artifact.
type Report struct {
	ModelVersion             string         `json:"model_version"`
	MinDate                  string         `json:"min_date"`
	MaxDate                  string         `json:"max_date"`
	RecommendationDate       string         `json:"recommendation_date"`
	Metrics                  []Metric       `json:"metrics"`
	SelectionSources         map[string]int `json:"selection_sources"`
	RecsSubscribedProportion float64        `json:"recs_subscribed_proportion"`
	RecsSelectedProportion   float64        `json:"recs_selected_proportion"`
}

// JoinAdds keeps calendar selections of known events starting on or after
// minDate, one per (user, event), first occurrence kept.
func JoinAdds(selected []recommend.Interaction, events []recommend.Event, minDate time.Time) []Add {
	starts := make(map[int64]time.Time, len(events))
	for _, ev := range events {
		if _, ok := starts[ev.ID]; !ok {
			starts[ev.ID] = ev.StartTime
		}
	}

	type pair struct {
		user  string
		event int64
	}
	seen := make(map[pair]struct{})
	var adds []Add
	for _, s := range selected {
		if s.SelectionType != recommend.SelectionCalendar {
			continue
		}
		start, ok := starts[s.EventID]
		if !ok || start.Before(minDate) {
			continue
		}
		key := pair{s.UserID, s.EventID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		adds = append(adds, Add{
			UserID:          s.UserID,
			EventID:         s.EventID,
			SelectionSource: s.SelectionSource,
			StartTime:       start,
		})
	}
	return adds
}

// JoinParticipants attaches each assigned user's subscription flag.
// Assignments of unknown users are dropped.
func JoinParticipants(assignments []recommend.ABAssignment, users []recommend.User) []Participant {
	subscribed := make(map[string]bool, len(users))
	for _, u := range users {
		subscribed[u.ID] = u.RecommendationSubscribed
	}

	out := make([]Participant, 0, len(assignments))
	for _, a := range assignments {
		sub, ok := subscribed[a.UserID]
		if !ok {
			continue
		}
		out = append(out, Participant{UserID: a.UserID, TestFlag: a.TestFlag, Subscribed: sub})
	}
	return out
}

// WeeklyUserAdds counts each user's adds per week for weeks starting at
// minDate, minDate+7d, ... up to (maxDate-minDate)/7 weeks. An add counts
// toward a week when its event starts within [week, week+7d], so an event
// starting exactly on a boundary counts in both weeks. Users without adds
// in a week have no row for it.
func WeeklyUserAdds(minDate, maxDate time.Time, adds []Add) []WeeklyAdds {
	weeks := int(maxDate.Sub(minDate).Hours()/24) / 7

	var out []WeeklyAdds
	for w := 0; w <= weeks; w++ {
		week := minDate.AddDate(0, 0, 7*w)
		next := week.AddDate(0, 0, 7)

		counts := make(map[string]int)
		for _, a := range adds {
			if !a.StartTime.Before(week) && !a.StartTime.After(next) {
				counts[a.UserID]++
			}
		}

		users := make([]string, 0, len(counts))
		for u := range counts {
			users = append(users, u)
		}
		sort.Strings(users)
		for _, u := range users {
			out = append(out, WeeklyAdds{UserID: u, Adds: counts[u], Week: week})
		}
	}
	return out
}

// beforeAfter splits the weekly counts of one side of the experiment at
// the recommendation date. Weeks starting on that date count as before.
func beforeAfter(weekly []WeeklyAdds, participants []Participant, flag bool, recDate time.Time) (before, after stats.Float64Data) {
	members := make(map[string]bool)
	for _, p := range participants {
		if p.TestFlag == flag {
			members[p.UserID] = true
		}
	}

	for _, w := range weekly {
		if !members[w.UserID] {
			continue
		}
		if w.Week.After(recDate) {
			after = append(after, float64(w.Adds))
		} else {
			before = append(before, float64(w.Adds))
		}
	}
	return before, after
}

// AggregateMetrics returns sum, mean and median of weekly adds before and
// after the recommendation date, for treatment and control. Statistics of
// an empty side are 0.
func AggregateMetrics(weekly []WeeklyAdds, participants []Participant, recDate time.Time) []Metric {
	recsBefore, recsAfter := beforeAfter(weekly, participants, true, recDate)
	ctrlBefore, ctrlAfter := beforeAfter(weekly, participants, false, recDate)

	statistics := []struct {
		name string
		fn   func(stats.Float64Data) (float64, error)
	}{
		{"sum", stats.Sum},
		{"mean", stats.Mean},
		{"median", stats.Median},
	}

	out := make([]Metric, 0, 2*len(statistics))
	for _, s := range statistics {
		out = append(out,
			Metric{Metric: s.name, Recs: true, Before: safeStat(s.fn, recsBefore), After: safeStat(s.fn, recsAfter)},
			Metric{Metric: s.name, Recs: false, Before: safeStat(s.fn, ctrlBefore), After: safeStat(s.fn, ctrlAfter)},
		)
	}
	return out
}

func safeStat(fn func(stats.Float64Data) (float64, error), data stats.Float64Data) float64 {
	if len(data) == 0 {
		return 0
	}
	v, err := fn(data)
	if err != nil {
		return 0
	}
	return v
}

// SelectionSources counts where adds of events starting after recDate
// came from.
func SelectionSources(adds []Add, recDate time.Time) map[string]int {
	out := make(map[string]int)
	for _, a := range adds {
		if a.StartTime.After(recDate) {
			out[a.SelectionSource]++
		}
	}
	return out
}

// SubscribedProportion is the percentage of treatment users still
// subscribed to recommendation emails.
func SubscribedProportion(participants []Participant) float64 {
	var treated, subscribed int
	for _, p := range participants {
		if !p.TestFlag {
			continue
		}
		treated++
		if p.Subscribed {
			subscribed++
		}
	}
	return percentage(subscribed, treated)
}

// SelectedProportion is the percentage of persisted recommendations the
// user later added.
func SelectedProportion(recs []recommend.Recommendation, adds []Add) float64 {
	type pair struct {
		user  string
		event int64
	}
	added := make(map[pair]struct{}, len(adds))
	for _, a := range adds {
		added[pair{a.UserID, a.EventID}] = struct{}{}
	}

	selected := 0
	for _, r := range recs {
		if _, ok := added[pair{r.UserID, r.EventID}]; ok {
			selected++
		}
	}
	return percentage(selected, len(recs))
}

func percentage(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}
