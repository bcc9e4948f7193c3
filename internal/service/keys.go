package service

import (
	"fmt"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

// Cache namespaces. Derived keys live under "<namespace>:<variant>"; the
// variant encodes every parameter that shapes the backing query so distinct
// queries never share a slot.
const (
	nsJobs   = "jobs"
	nsTokens = "tokens"
	nsToken  = "token"
)

const (
	keyJobsActive = "active"
)

func keyJobsPostedBy(mobile string) string    { return "postedBy:" + mobile }
func keyJobsCollectedBy(mobile string) string { return "collectedBy:" + mobile }

// tokenListKey derives the admin-listing variant. The family is unbounded
// (pagination x filter x search), so mutations clear it with the
// tokensListPattern glob instead of enumerating members.
func tokenListKey(status *domain.TokenStatus, page, limit int, search string) string {
	if status != nil {
		return fmt.Sprintf("status%s_p%d_l%d", *status, page, limit)
	}
	return fmt.Sprintf("tokens_p%d_l%d_s%s", page, limit, search)
}

// tokensListPattern matches every admin-listing variant and nothing else;
// exact keys such as token:<mobile> live in a different namespace and
// tokens:<mobile> does not share the prefix.
const tokensListPattern = nsTokens + ":tokens*"

const tokensStatusPattern = nsTokens + ":status*"

// tokenKeys enumerates the exact keys a token mutation for one mobile number
// invalidates alongside the listing patterns.
func tokenKeys(mobile string) []string {
	return []string{
		cache.Key(nsTokens, mobile),
		cache.Key(nsToken, mobile),
	}
}

func jobCreationKeys(posterMobile string) []string {
	return []string{
		cache.Key(nsJobs, keyJobsActive),
		cache.Key(nsJobs, keyJobsPostedBy(posterMobile)),
	}
}

func jobCompletionKeys(posterMobile, collectorMobile string) []string {
	return append(jobCreationKeys(posterMobile), cache.Key(nsJobs, keyJobsCollectedBy(collectorMobile)))
}
