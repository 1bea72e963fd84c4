package classifier

import (
	"context"
	"math"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type keywordSet struct {
	category domain.ComplaintCategory
	words    []string
}

// Order matters: on equal hit counts the earlier category wins.
var categoryKeywords = []keywordSet{
	{domain.CategoryBilling, []string{
		"bill", "billing", "charge", "charged", "payment", "invoice", "paid",
		"overcharged", "double charge", "subscription", "fee", "cost", "price",
		"credit card", "debit", "transaction", "autopay", "refund",
	}},
	{domain.CategoryDelivery, []string{
		"deliver", "delivery", "shipping", "shipped", "ship", "late", "delay",
		"arrived", "tracking", "package", "order", "dispatch", "courier",
		"transit", "logistics", "warehouse", "not received", "lost package",
	}},
	{domain.CategoryProductQuality, []string{
		"broken", "defect", "defective", "quality", "damaged", "faulty",
		"poor quality", "cheap", "deteriorated", "malfunction", "doesn't work",
		"stopped working", "issue with product", "product problem", "warranty",
	}},
	{domain.CategoryRefund, []string{
		"refund", "return", "money back", "reimbursement", "give back",
		"want my money", "cancellation", "cancel", "exchange", "replacement",
	}},
	{domain.CategoryAccount, []string{
		"account", "login", "password", "access", "locked", "suspended",
		"can't log in", "username", "profile", "sign in", "authentication",
		"verify", "verification", "reset", "blocked",
	}},
	{domain.CategoryServiceQuality, []string{
		"support", "service", "representative", "agent", "staff", "employee",
		"rude", "unhelpful", "poor service", "bad service", "customer care",
		"help desk", "no response", "ignored", "waiting", "attitude",
	}},
	{domain.CategoryTechnicalSupport, []string{
		"bug", "error", "crash", "technical", "app", "website", "system",
		"not working", "glitch", "freeze", "slow", "loading", "connection",
		"software", "update", "feature", "functionality", "interface", "dark mode",
	}},
}

var (
	negativeWords = []string{
		"angry", "frustrated", "terrible", "awful", "horrible", "worst",
		"hate", "disappointed", "disgusted", "furious", "annoyed", "upset",
		"useless", "pathetic", "ridiculous", "unacceptable", "poor", "bad",
	}
	positiveWords = []string{
		"thank", "thanks", "great", "excellent", "happy", "satisfied",
		"love", "appreciate", "wonderful", "amazing", "fantastic", "good",
		"pleased", "glad", "perfect", "awesome", "brilliant",
	}
	neutralWords = []string{
		"suggest", "suggestion", "would be nice", "could", "maybe", "perhaps",
		"consider", "feature request", "idea", "feedback",
	}
)

const (
	defaultCategoryConfidence = 0.70
	baseCategoryConfidence    = 0.85
	perHitConfidence          = 0.02
	maxCategoryConfidence     = 0.99
)

// Keyword is a deterministic, dependency-free classifier based on keyword hits.
type Keyword struct{}

// NewKeyword returns the keyword classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Classify never fails except on a cancelled context.
func (k *Keyword) Classify(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	lower := strings.ToLower(text)
	category, categoryConf := k.category(lower)
	sentiment, sentimentConf := k.sentiment(lower)
	return Result{
		Category:  category,
		Sentiment: sentiment,
		Confidence: domain.Confidence{
			Category:  categoryConf,
			Sentiment: sentimentConf,
		},
	}, nil
}

// CategoryOf exposes the category axis for callers that only need one label.
func (k *Keyword) CategoryOf(text string) (domain.ComplaintCategory, float64) {
	return k.category(strings.ToLower(text))
}

// SentimentOf exposes the sentiment axis for callers that only need one label.
func (k *Keyword) SentimentOf(text string) (domain.Sentiment, float64) {
	return k.sentiment(strings.ToLower(text))
}

func (k *Keyword) category(lower string) (domain.ComplaintCategory, float64) {
	best := domain.CategoryServiceQuality
	bestHits := 0
	for _, set := range categoryKeywords {
		hits := countHits(lower, set.words)
		if hits > bestHits {
			best, bestHits = set.category, hits
		}
	}
	if bestHits == 0 {
		return domain.CategoryServiceQuality, defaultCategoryConfidence
	}
	conf := math.Min(baseCategoryConfidence+float64(bestHits)*perHitConfidence, maxCategoryConfidence)
	return best, math.Round(conf*1000) / 1000
}

func (k *Keyword) sentiment(lower string) (domain.Sentiment, float64) {
	negative := countHits(lower, negativeWords)
	positive := countHits(lower, positiveWords)
	neutral := countHits(lower, neutralWords)

	switch {
	case neutral > 0 && negative == 0:
		return domain.SentimentNeutral, 0.85
	case negative > positive:
		return domain.SentimentNegative, 0.80
	case positive > negative:
		return domain.SentimentPositive, 0.80
	default:
		return domain.SentimentNeutral, 0.75
	}
}

func countHits(lower string, words []string) int {
	hits := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return hits
}
