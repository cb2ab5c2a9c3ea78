package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type searchService struct {
	BaseService
	clientRepo portsrepo.ClientReader
	caseRepo   portsrepo.CaseRepositoryFacade
}

// NewSearchService creates the global search service.
func NewSearchService(clientRepo portsrepo.ClientReader, caseRepo portsrepo.CaseRepositoryFacade, opts ...BaseOption) portssvc.SearchSvc {
	svc := &searchService{clientRepo: clientRepo, caseRepo: caseRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.SearchSvc = (*searchService)(nil)

// Search queries clients and cases concurrently. A failure of either query fails the
// whole search; partial results are never returned.
func (s *searchService) Search(ctx context.Context, term string, limit int, userID string) ([]domain.SearchResult, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.SearchResult{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	var (
		clients []domain.Client
		cases   []domain.Case
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.clientRepo.SearchClients(gctx, term, limit)
		return err
	})
	g.Go(func() error {
		var err error
		cases, err = s.caseRepo.SearchCases(gctx, term, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Search failed", slog.String("term", term))
		return nil, err
	}

	return MergeSearchResults(term, clients, cases, limit), nil
}

// MergeSearchResults ranks clients and cases against term and returns at most limit
// results ordered by priority, then type (clients first), then title.
func MergeSearchResults(term string, clients []domain.Client, cases []domain.Case, limit int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(clients)+len(cases))
	for _, c := range clients {
		results = append(results, domain.SearchResult{
			Type:     domain.SearchClient,
			ID:       c.ClientID,
			Title:    c.ClientName,
			Subtitle: "Account " + c.AccountNumber,
			Priority: priority(term, c.AccountNumber, c.ClientName),
		})
	}
	for _, c := range cases {
		results = append(results, domain.SearchResult{
			Type:     domain.SearchCase,
			ID:       c.CaseID,
			Title:    c.CaseNumber,
			Subtitle: c.PatientName,
			Priority: priority(term, c.CaseNumber, c.CaseNumber),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Type != b.Type {
			return a.Type == domain.SearchClient
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func priority(term, identifier, title string) int {
	switch {
	case strings.EqualFold(identifier, term):
		return domain.PriorityExact
	case strings.HasPrefix(strings.ToLower(title), strings.ToLower(term)):
		return domain.PriorityPrefix
	default:
		return domain.PriorityContains
	}
}
