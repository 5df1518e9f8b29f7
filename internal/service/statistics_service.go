package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"luna/internal/domain"
	"luna/internal/repository"
)

var ErrNoStatistics = errors.New("user has no statistics yet")

// Award - медаль за достижения
type Award string

const (
	AwardNone    Award = ""
	AwardBronze  Award = "bronze"
	AwardSilver  Award = "silver"
	AwardGold    Award = "gold"
	AwardDiamond Award = "diamond"
)

// WinsAward ranks a player by games won.
func WinsAward(won int64) Award {
	switch {
	case won >= 50:
		return AwardDiamond
	case won >= 25:
		return AwardGold
	case won >= 10:
		return AwardSilver
	case won >= 1:
		return AwardBronze
	default:
		return AwardNone
	}
}

// PlayTimeAward ranks a player by hours played.
func PlayTimeAward(seconds int64) Award {
	const hour = 3600
	switch {
	case seconds >= 24*hour:
		return AwardDiamond
	case seconds >= 12*hour:
		return AwardGold
	case seconds >= 6*hour:
		return AwardSilver
	case seconds >= 3*hour:
		return AwardBronze
	default:
		return AwardNone
	}
}

// FormatSeconds renders a duration as "1d 2h 3m 4s", leaving out zero units.
func FormatSeconds(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	units := []struct {
		size   int64
		suffix string
	}{{86400, "d"}, {3600, "h"}, {60, "m"}, {1, "s"}}

	parts := make([]string, 0, len(units))
	for _, u := range units {
		if v := seconds / u.size; v > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", v, u.suffix))
			seconds %= u.size
		}
	}
	return strings.Join(parts, " ")
}

type Profile struct {
	Statistics    *domain.Statistics `json:"statistics"`
	WinsAward     Award              `json:"wins_award,omitempty"`
	PlayTimeAward Award              `json:"play_time_award,omitempty"`
	WinRate       float64            `json:"win_rate"`
	PlayTime      string             `json:"play_time"`
}

// StatisticsStore is the storage StatisticsService needs.
type StatisticsStore interface {
	Get(ctx context.Context, user domain.UserID) (*domain.Statistics, error)
	TopWinners(ctx context.Context, limit int) ([]*domain.Statistics, error)
}

type StatisticsService struct {
	store StatisticsStore
}

func NewStatisticsService(store StatisticsStore) *StatisticsService {
	return &StatisticsService{store: store}
}

func newProfile(st *domain.Statistics) *Profile {
	p := &Profile{
		Statistics:    st,
		WinsAward:     WinsAward(st.GamesWon),
		PlayTimeAward: PlayTimeAward(st.PlayTime),
		PlayTime:      FormatSeconds(st.PlayTime),
	}
	if st.GamesPlayed > 0 {
		p.WinRate = float64(st.GamesWon) / float64(st.GamesPlayed)
	}
	return p
}

func (s *StatisticsService) Profile(ctx context.Context, user domain.UserID) (*Profile, error) {
	st, err := s.store.Get(ctx, user)
	if errors.Is(err, repository.ErrStatisticsNotFound) {
		return nil, ErrNoStatistics
	}
	if err != nil {
		return nil, fmt.Errorf("load statistics for %s: %w", user, err)
	}
	return newProfile(st), nil
}

// Leaderboard returns profiles of the top winners.
func (s *StatisticsService) Leaderboard(ctx context.Context, limit int) ([]*Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	top, err := s.store.TopWinners(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	out := make([]*Profile, 0, len(top))
	for _, st := range top {
		out = append(out, newProfile(st))
	}
	return out, nil
}
