// Package graph holds the in-memory aggregation over connection edges.
// Both store implementations and the directory read path share it, so the
// dedup-by-peer counting rule lives in exactly one place.
package graph

import (
	"sort"
	"strings"

	"sampark-backend/models"
)

func norm(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PeerSets builds email -> set-of-accepted-peer-emails in a single pass
// over the edges. Directory listings use this instead of one count query
// per attendee.
func PeerSets(edges []models.Connection) map[string]map[string]struct{} {
	peers := make(map[string]map[string]struct{})
	add := func(a, b string) {
		if peers[a] == nil {
			peers[a] = make(map[string]struct{})
		}
		peers[a][b] = struct{}{}
	}
	for _, e := range edges {
		if e.Status != models.ConnectionAccepted {
			continue
		}
		s, t := norm(e.SourceEmail), norm(e.TargetEmail)
		if s == "" || t == "" {
			continue
		}
		add(s, t)
		add(t, s)
	}
	return peers
}

// Count returns the number of distinct peers with at least one Accepted
// edge touching email, in either direction. Multiple accepted edges with
// the same peer count once.
func Count(edges []models.Connection, email string) int {
	me := norm(email)
	seen := make(map[string]struct{})
	for _, e := range edges {
		if e.Status != models.ConnectionAccepted {
			continue
		}
		s, t := norm(e.SourceEmail), norm(e.TargetEmail)
		switch me {
		case s:
			if t != "" {
				seen[t] = struct{}{}
			}
		case t:
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	return len(seen)
}

// StatusBetween reports the status of the edge between a and b, checked in
// either direction, or ConnectionNone if no edge exists.
func StatusBetween(edges []models.Connection, a, b string) models.ConnectionStatus {
	na, nb := norm(a), norm(b)
	for _, e := range edges {
		s, t := norm(e.SourceEmail), norm(e.TargetEmail)
		if (s == na && t == nb) || (s == nb && t == na) {
			return e.Status
		}
	}
	return models.ConnectionNone
}

// Annotate returns every edge touching email, tagged with its direction and
// the other party's display name, newest first. Names resolve from the
// attendee table (keys of nameByEmail must be lowercased); an incoming
// edge falls back to the name the requester typed, then "Anonymous".
func Annotate(edges []models.Connection, email string, nameByEmail map[string]string) []models.AnnotatedConnection {
	me := norm(email)
	out := make([]models.AnnotatedConnection, 0)
	for _, e := range edges {
		s, t := norm(e.SourceEmail), norm(e.TargetEmail)
		if s != me && t != me {
			continue
		}
		a := models.AnnotatedConnection{Connection: e, Direction: models.DirectionOutgoing}
		peer := t
		if t == me {
			a.Direction = models.DirectionIncoming
			peer = s
		}
		name := nameByEmail[peer]
		if name == "" && a.Direction == models.DirectionIncoming && e.SourceName != nil {
			name = *e.SourceName
		}
		if name == "" {
			name = "Anonymous"
		}
		a.PeerName = name
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
