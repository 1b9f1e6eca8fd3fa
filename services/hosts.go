package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Dosada05/scorebridge/models"
	"github.com/gosimple/slug"
)

// TournamentRef identifies a tournament on one host.
type TournamentRef struct {
	Host         models.Host
	URL          string
	TournamentID string
}

// Key is the registry key of the tournament, also used as the websocket room suffix.
func (r TournamentRef) Key() string {
	return slug.Make(string(r.Host) + " " + r.TournamentID)
}

// ParseTournamentURL classifies a bracket URL.
//
//	https://challonge.com/weekly12           -> challonge, "weekly12"
//	https://myorg.challonge.com/weekly12     -> challonge, "myorg-weekly12"
//	https://www.start.gg/tournament/t/event/e/overview -> startgg, "tournament/t/event/e"
func ParseTournamentURL(raw string) (TournamentRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TournamentRef{}, ErrURLRequired
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return TournamentRef{}, fmt.Errorf("%w: %v", ErrUnknownHost, err)
	}
	host := strings.ToLower(u.Hostname())
	segments := pathSegments(u.Path)

	switch {
	case host == "challonge.com" || strings.HasSuffix(host, ".challonge.com"):
		if len(segments) == 0 {
			return TournamentRef{}, fmt.Errorf("%w: no tournament id in %q", ErrValidation, raw)
		}
		id := segments[len(segments)-1]
		if sub := strings.TrimSuffix(host, ".challonge.com"); sub != host && sub != "www" {
			id = sub + "-" + id
		}
		return TournamentRef{Host: models.HostChallonge, URL: raw, TournamentID: id}, nil

	case isStartGGHost(host):
		for i := 0; i+3 < len(segments); i++ {
			if segments[i] == "tournament" && segments[i+2] == "event" {
				eventSlug := strings.Join(segments[i:i+4], "/")
				return TournamentRef{Host: models.HostStartGG, URL: raw, TournamentID: eventSlug}, nil
			}
		}
		return TournamentRef{}, fmt.Errorf("%w: start.gg url must point at an event: %q", ErrValidation, raw)

	default:
		return TournamentRef{}, fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
}

func isStartGGHost(host string) bool {
	switch host {
	case "start.gg", "www.start.gg", "smash.gg", "www.smash.gg":
		return true
	}
	return false
}

func pathSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
