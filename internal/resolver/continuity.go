package resolver

import (
	"context"
	"fmt"
	"sort"

	"rosterid/internal/identity/models"
	identityservice "rosterid/internal/identity/service"
	"rosterid/internal/similarity"
	id "rosterid/pkg/domain"
)

// continuityPass maps every team record to an identity before pairwise
// scoring, oldest season first, so that providers re-issuing team ids do not
// fork a team's history. Per record, in order:
//
//  1. a mapping for the same external id in another season (exact alignment)
//  2. the best identity of the same league last seen within the window whose
//     weighted team-name and owner-name similarity exceeds the threshold
//  3. a new identity
//
// Matches in 1 and 2 extend the identity's owner history. The pairwise pass
// that follows only surfaces pairs whose records ended up on different
// identities.
func (r *Resolver) continuityPass(ctx context.Context, rc *RunContext, records []models.RawRecord) error {
	bySeason := make(map[int][]models.RawRecord)
	for _, rec := range records {
		bySeason[rec.Season] = append(bySeason[rec.Season], rec)
	}
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	for _, season := range seasons {
		summaries, err := r.graph.ListIdentities(ctx, id.KindTeam)
		if err != nil {
			return fmt.Errorf("list team identities: %w", err)
		}
		batch := bySeason[season]
		sort.Slice(batch, func(i, j int) bool { return batch[i].ExternalID < batch[j].ExternalID })

		claimed := make(map[id.IdentityID]bool)
		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.continueTeam(ctx, rc, rec, summaries, claimed); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				code := rc.fail(err)
				r.metrics.IncPairError(code)
				r.logger.WarnContext(ctx, "team continuity failed",
					"run_id", rc.ID,
					"record", rec.Key().String(),
					"error", err,
				)
			}
		}
	}
	return nil
}

func (r *Resolver) continueTeam(ctx context.Context, rc *RunContext, rec models.RawRecord, summaries []identityservice.IdentitySummary, claimed map[id.IdentityID]bool) error {
	mappings, err := r.graph.LookupExternalID(ctx, id.KindTeam, rec.ExternalID)
	if err != nil {
		return err
	}
	var nearest *models.IdentityMapping
	for _, m := range mappings {
		if m.Record.Season == rec.Season {
			claimed[m.IdentityID] = true
			rc.assigned[rec.Key()] = m.IdentityID
			return nil
		}
		if nearest == nil || abs(m.Record.Season-rec.Season) < abs(nearest.Record.Season-rec.Season) {
			nearest = m
		}
	}
	if nearest != nil {
		claimed[nearest.IdentityID] = true
		return r.continueWith(ctx, rc, rec, nearest.IdentityID, 1.0, models.MethodExact,
			fmt.Sprintf("external id seen in season %d", nearest.Record.Season))
	}

	if best, score := r.bestContinuation(rec, summaries, claimed); best != nil {
		claimed[best.ID] = true
		if err := r.continueWith(ctx, rc, rec, best.ID, score, models.MethodFuzzy,
			fmt.Sprintf("team continuity %.3f", score)); err != nil {
			return err
		}
		rc.continuityMatched.Add(1)
		return nil
	}

	result, err := r.graph.EnsureIdentity(ctx, rec, "no continuing team identity")
	if err != nil {
		return err
	}
	claimed[result.Identity.ID] = true
	rc.assigned[rec.Key()] = result.Identity.ID
	if result.Created {
		rc.identitiesCreated.Add(1)
	}
	return nil
}

func (r *Resolver) continueWith(ctx context.Context, rc *RunContext, rec models.RawRecord, identityID id.IdentityID, confidence float64, method models.MatchMethod, reason string) error {
	if _, err := r.graph.Assign(ctx, identityID, rec, confidence, method, reason); err != nil {
		return err
	}
	rc.assigned[rec.Key()] = identityID
	_, err := r.graph.ExtendOwnerHistory(ctx, identityID, rec.OwnerName, rec.Season, reason)
	return err
}

// bestContinuation returns the highest scoring identity above the threshold.
// Ties go to the lower identity id so reruns pick the same team.
func (r *Resolver) bestContinuation(rec models.RawRecord, summaries []identityservice.IdentitySummary, claimed map[id.IdentityID]bool) (*models.MasterIdentity, float64) {
	cfg := r.cfg.Continuity
	var (
		best      *models.MasterIdentity
		bestScore float64
	)
	for _, s := range summaries {
		identity := s.Identity
		team := identity.Metadata.Team
		if team == nil || claimed[identity.ID] {
			continue
		}
		if s.LatestSeason >= rec.Season || rec.Season-s.LatestSeason > cfg.Window {
			continue
		}
		if team.LeagueID != "" && rec.LeagueID != "" && team.LeagueID != rec.LeagueID {
			continue
		}

		name := similarity.Similarity(rec.DisplayName, identity.CanonicalName)
		for _, alt := range team.AlternateNames {
			name = max(name, similarity.Similarity(rec.DisplayName, alt))
		}
		owner := models.OwnerAt(team.OwnerHistory, s.LatestSeason)
		if owner == "" {
			owner = models.LatestOwner(team.OwnerHistory)
		}
		score := cfg.NameWeight*name + cfg.OwnerWeight*similarity.Similarity(rec.OwnerName, owner)
		if score <= cfg.Threshold {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && identity.ID.String() < best.ID.String()) {
			best, bestScore = identity, score
		}
	}
	return best, bestScore
}
