// AngelaMos | 2026
// report.go

package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clubfines/backend/internal/authprovider"
	"github.com/clubfines/backend/internal/identity"
)

// LegacyLister loads every active legacy user for the audit.
// identity.Repository satisfies it.
type LegacyLister interface {
	ListAllActive(ctx context.Context) ([]identity.User, error)
}

// ProviderLister loads every auth identity for the audit.
// authprovider.Service satisfies it.
type ProviderLister interface {
	ListIdentities(ctx context.Context) ([]authprovider.Identity, error)
}

// LegacyEntry is a legacy user as listed in the report, secrets
// stripped.
type LegacyEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProviderEntry is an auth identity as listed in the report.
type ProviderEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NameMismatch records an email present in both stores whose name
// fields diverge.
type NameMismatch struct {
	Email           string    `json:"email"`
	LegacyID        int64     `json:"legacyId"`
	AuthID          string    `json:"authId"`
	LegacyName      string    `json:"legacyName"`
	AuthName        string    `json:"authName"`
	LegacyCreatedAt time.Time `json:"legacyCreatedAt"`
	AuthCreatedAt   time.Time `json:"authCreatedAt"`
}

type ReportSummary struct {
	LegacyCount           int  `json:"legacyCount"`
	AuthCount             int  `json:"authCount"`
	MatchedCount          int  `json:"matchedCount"`
	NameMismatchCount     int  `json:"nameMismatchCount"`
	OnlyInBetterAuthCount int  `json:"onlyInBetterAuthCount"`
	OnlyInLegacyCount     int  `json:"onlyInLegacyCount"`
	Consistent            bool `json:"consistent"`
}

// Report is the full audit output: summary counts, both tables in
// full, and the discrepancy lists. All listings are sorted by email
// so two runs over the same data produce identical output.
type Report struct {
	Summary          ReportSummary   `json:"summary"`
	LegacyUsers      []LegacyEntry   `json:"legacyUsers"`
	AuthUsers        []ProviderEntry `json:"authUsers"`
	NameMismatches   []NameMismatch  `json:"nameMismatches"`
	OnlyInBetterAuth []ProviderEntry `json:"onlyInBetterAuth"`
	OnlyInLegacy     []LegacyEntry   `json:"onlyInLegacy"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// Reporter compares the two user stores without mutating either.
// Saga failures whose compensation also failed surface here as
// onlyInBetterAuth orphans; remediation is manual.
type Reporter struct {
	legacy   LegacyLister
	provider ProviderLister
}

func NewReporter(legacy LegacyLister, provider ProviderLister) *Reporter {
	return &Reporter{legacy: legacy, provider: provider}
}

func (r *Reporter) Run(ctx context.Context) (*Report, error) {
	legacyUsers, err := r.legacy.ListAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list legacy users: %w", err)
	}

	identities, err := r.provider.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list auth identities: %w", err)
	}

	legacyByEmail := make(map[string]*identity.User, len(legacyUsers))
	for i := range legacyUsers {
		legacyByEmail[identity.NormalizeEmail(legacyUsers[i].Email)] = &legacyUsers[i]
	}

	authByEmail := make(map[string]*authprovider.Identity, len(identities))
	for i := range identities {
		authByEmail[identity.NormalizeEmail(identities[i].Email)] = &identities[i]
	}

	report := &Report{
		LegacyUsers:      make([]LegacyEntry, 0, len(legacyUsers)),
		AuthUsers:        make([]ProviderEntry, 0, len(identities)),
		NameMismatches:   []NameMismatch{},
		OnlyInBetterAuth: []ProviderEntry{},
		OnlyInLegacy:     []LegacyEntry{},
		GeneratedAt:      time.Now().UTC(),
	}

	for i := range legacyUsers {
		report.LegacyUsers = append(report.LegacyUsers, toLegacyEntry(&legacyUsers[i]))
	}
	for i := range identities {
		report.AuthUsers = append(report.AuthUsers, toProviderEntry(&identities[i]))
	}

	matched := 0

	for email, legacyUser := range legacyByEmail {
		ident, ok := authByEmail[email]
		if !ok {
			report.OnlyInLegacy = append(
				report.OnlyInLegacy,
				toLegacyEntry(legacyUser),
			)
			continue
		}

		matched++

		if legacyUser.Name != ident.Name {
			report.NameMismatches = append(report.NameMismatches, NameMismatch{
				Email:           email,
				LegacyID:        legacyUser.ID,
				AuthID:          ident.ID,
				LegacyName:      legacyUser.Name,
				AuthName:        ident.Name,
				LegacyCreatedAt: legacyUser.CreatedAt,
				AuthCreatedAt:   ident.CreatedAt,
			})
		}
	}

	for email, ident := range authByEmail {
		if _, ok := legacyByEmail[email]; !ok {
			report.OnlyInBetterAuth = append(
				report.OnlyInBetterAuth,
				toProviderEntry(ident),
			)
		}
	}

	sortReport(report)

	report.Summary = ReportSummary{
		LegacyCount:           len(legacyUsers),
		AuthCount:             len(identities),
		MatchedCount:          matched,
		NameMismatchCount:     len(report.NameMismatches),
		OnlyInBetterAuthCount: len(report.OnlyInBetterAuth),
		OnlyInLegacyCount:     len(report.OnlyInLegacy),
		Consistent: len(report.NameMismatches) == 0 &&
			len(report.OnlyInBetterAuth) == 0 &&
			len(report.OnlyInLegacy) == 0,
	}

	return report, nil
}

func sortReport(report *Report) {
	sort.Slice(report.LegacyUsers, func(i, j int) bool {
		return report.LegacyUsers[i].Email < report.LegacyUsers[j].Email
	})
	sort.Slice(report.AuthUsers, func(i, j int) bool {
		return report.AuthUsers[i].Email < report.AuthUsers[j].Email
	})
	sort.Slice(report.NameMismatches, func(i, j int) bool {
		return report.NameMismatches[i].Email < report.NameMismatches[j].Email
	})
	sort.Slice(report.OnlyInBetterAuth, func(i, j int) bool {
		return report.OnlyInBetterAuth[i].Email < report.OnlyInBetterAuth[j].Email
	})
	sort.Slice(report.OnlyInLegacy, func(i, j int) bool {
		return report.OnlyInLegacy[i].Email < report.OnlyInLegacy[j].Email
	})
}

func toLegacyEntry(u *identity.User) LegacyEntry {
	return LegacyEntry{
		ID:        u.ID,
		Name:      u.Name,
		Email:     identity.NormalizeEmail(u.Email),
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toProviderEntry(i *authprovider.Identity) ProviderEntry {
	return ProviderEntry{
		ID:            i.ID,
		Name:          i.Name,
		Email:         identity.NormalizeEmail(i.Email),
		EmailVerified: i.EmailVerified,
		CreatedAt:     i.CreatedAt,
	}
}
