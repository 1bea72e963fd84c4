// Package analytics rolls a store snapshot up into the dashboard report.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// TrendWindow is the trailing window used for recent trends and top issues.
const TrendWindow = 7 * 24 * time.Hour

// DefaultTopIssues bounds the top_issues list.
const DefaultTopIssues = 5

// Report is the analytics payload.
type Report struct {
	TotalComplaints   int                              `json:"total_complaints"`
	Categories        map[domain.ComplaintCategory]int `json:"categories"`
	Sentiments        map[domain.Sentiment]int         `json:"sentiments"`
	Priorities        map[domain.ComplaintPriority]int `json:"priorities"`
	Statuses          map[domain.ComplaintStatus]int   `json:"statuses"`
	RecentTrends      RecentTrends                     `json:"recent_trends"`
	TopIssues         []IssueCount                     `json:"top_issues"`
	CSATScore         float64                          `json:"csat_score"`
	AvgResponseTime   float64                          `json:"avg_response_time"`
	SLACompliance     float64                          `json:"sla_compliance"`
	OverdueComplaints int                              `json:"overdue_complaints"`
	GeneratedAt       time.Time                        `json:"generated_at"`
}

// RecentTrends counts complaints in the trailing window.
type RecentTrends struct {
	Last7Days int `json:"last_7_days"`
}

// IssueCount is one entry of top_issues.
type IssueCount struct {
	Category domain.ComplaintCategory `json:"category"`
	Count    int                      `json:"count"`
}

// Compute builds the report for complaints as of now. topN <= 0 uses DefaultTopIssues.
//
// csat_score is 3 + 2*(positive-negative)/total clamped to [1, 5] and rounded
// to one decimal, which equals the 5/3/1 weighted sentiment mean.
// sla_compliance is the share of resolved complaints closed by their deadline;
// it reads 100 while nothing is resolved yet and 0 on an empty store.
func Compute(complaints []domain.Complaint, now time.Time, topN int) Report {
	if topN <= 0 {
		topN = DefaultTopIssues
	}
	report := Report{
		TotalComplaints: len(complaints),
		Categories:      zeroed(domain.Categories),
		Sentiments:      zeroed(domain.Sentiments),
		Priorities:      zeroed(domain.Priorities),
		Statuses:        zeroed(domain.Statuses),
		TopIssues:       []IssueCount{},
		GeneratedAt:     now,
	}

	windowStart := now.Add(-TrendWindow)
	weekly := map[domain.ComplaintCategory]int{}
	var (
		resolved      int
		onTime        int
		totalResponse time.Duration
	)

	for i := range complaints {
		c := &complaints[i]
		report.Categories[c.Category]++
		report.Sentiments[c.Sentiment]++
		report.Priorities[c.Priority]++
		report.Statuses[c.Status]++

		if !c.CreatedAt.Before(windowStart) {
			report.RecentTrends.Last7Days++
			weekly[c.Category]++
		}
		if c.IsOverdue(now) {
			report.OverdueComplaints++
		}
		if d, ok := c.ResponseTime(); ok {
			resolved++
			totalResponse += d
			if met, _ := c.MetSLA(); met {
				onTime++
			}
		}
	}

	report.TopIssues = topIssues(weekly, topN)
	if report.TotalComplaints == 0 {
		return report
	}

	total := float64(report.TotalComplaints)
	pos := float64(report.Sentiments[domain.SentimentPositive])
	neg := float64(report.Sentiments[domain.SentimentNegative])
	report.CSATScore = round(clamp(3+2*(pos-neg)/total, 1, 5), 1)

	if resolved == 0 {
		report.SLACompliance = 100
		return report
	}
	report.AvgResponseTime = round(totalResponse.Hours()/float64(resolved), 2)
	report.SLACompliance = round(100*float64(onTime)/float64(resolved), 1)
	return report
}

func topIssues(counts map[domain.ComplaintCategory]int, n int) []IssueCount {
	issues := make([]IssueCount, 0, len(counts))
	for category, count := range counts {
		if count > 0 {
			issues = append(issues, IssueCount{Category: category, Count: count})
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Category < issues[j].Category
	})
	if len(issues) > n {
		issues = issues[:n]
	}
	return issues
}

func zeroed[K ~string](keys []K) map[K]int {
	out := make(map[K]int, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
