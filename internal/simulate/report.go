// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package simulate

import (
	"fmt"
	"time"

	"github.com/tomtom215/eventrec/internal/recommend"
)

// TimestampLayout formats the report timestamp as YYYY-MM-DDvHH-MM.
const TimestampLayout = "2006-01-02v15-04"

// Count is a total with its share of correct+unchosen.
type Count struct {
	Count int    `json:"count"`
	Pct   string `json:"pct"`
}

// EventList is one outcome class for one user.
type EventList struct {
	Count  int     `json:"count"`
	Events []int64 `json:"events"`
}

// UserResult splits one user's events into the three outcome classes.
type UserResult struct {
	Correct  EventList `json:"correct"`
	Missed   EventList `json:"missed"`
	Unchosen EventList `json:"unchosen"`
}

// Report is the simulation artifact.
type Report struct {
	Correct        Count                  `json:"correct"`
	Missed         Count                  `json:"missed"`
	Unchosen       Count                  `json:"unchosen"`
	Total          int                    `json:"total"`
	RecsPerUser    string                 `json:"recs_per_user"`
	Timestamp      string                 `json:"timestamp"`
	FunctionName   string                 `json:"function_name"`
	FunctionParams map[string]interface{} `json:"function_params"`
	ModelVersion   string                 `json:"model_version"`
	UserResults    map[string]UserResult  `json:"user_results,omitempty"`
}

// ReportName returns {model_version}_{timestamp}.json, the file name of a
// report for modelVersion stamped at.
func ReportName(modelVersion string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", modelVersion, at.Format(TimestampLayout))
}

// Classify scores every user with actual adds: correct are recommended
// and added, missed are added but never recommended, unchosen are
// recommended but never added. Users without adds are not scored.
func Classify(recommended recommend.Recommendations, actual map[string]recommend.EventSet) map[string]UserResult {
	results := make(map[string]UserResult, len(actual))
	for user, choices := range actual {
		recs := recommended[user]
		correct := choices.Intersect(recs)
		results[user] = UserResult{
			Correct:  eventList(correct),
			Missed:   eventList(choices.Difference(correct)),
			Unchosen: eventList(recs.Difference(correct)),
		}
	}
	return results
}

func eventList(s recommend.EventSet) EventList {
	return EventList{Count: len(s), Events: s.Sorted()}
}

// BuildReport aggregates user results into a report. Percentages are taken
// over correct+unchosen, the number of recommendations made to scored
// users; a zero denominator yields "0.00%".
func BuildReport(results map[string]UserResult, modelVersion, functionName string, params map[string]interface{}, includeUserResults bool, now time.Time) *Report {
	var correct, missed, unchosen int
	for _, r := range results {
		correct += r.Correct.Count
		missed += r.Missed.Count
		unchosen += r.Unchosen.Count
	}
	total := correct + unchosen

	report := &Report{
		Correct:        Count{Count: correct, Pct: percent(correct, total)},
		Missed:         Count{Count: missed, Pct: percent(missed, total)},
		Unchosen:       Count{Count: unchosen, Pct: percent(unchosen, total)},
		Total:          total,
		RecsPerUser:    ratio(total, len(results)),
		Timestamp:      now.Format(TimestampLayout),
		FunctionName:   functionName,
		FunctionParams: params,
		ModelVersion:   modelVersion,
	}
	if includeUserResults {
		report.UserResults = results
	}
	return report
}

func percent(n, d int) string {
	if d == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100*float64(n)/float64(d))
}

func ratio(n, d int) string {
	if d == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(n)/float64(d))
}
