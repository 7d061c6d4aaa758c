package manager

import (
	"sort"
	"sync"
	"time"
)

// GroupSize is how many records at one compression level are merged into a
// single record of the next level.
const GroupSize = 100

// GameRecord is one finished snake life, or a group of them once
// CompressionIndex > 0.
type GameRecord struct {
	EndTime          time.Time
	CompressionIndex int
	GamesCount       int
	AverageScore     float64
	MedianScore      float64
	MaxScore         int
	MinScore         int
}

// StatsManager keeps the score history of finished snakes. Old records are
// compressed into groups so memory stays bounded over long sessions.
type StatsManager struct {
	mutex  sync.RWMutex
	games  []GameRecord
	causes map[string]int
	now    func() time.Time
}

func NewStatsManager() *StatsManager {
	return &StatsManager{
		causes: make(map[string]int),
		now:    time.Now,
	}
}

// AddGame records a snake that ended with score, removed for cause.
func (s *StatsManager) AddGame(score int, cause string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.games = append(s.games, GameRecord{
		EndTime:      s.now(),
		GamesCount:   1,
		AverageScore: float64(score),
		MedianScore:  float64(score),
		MaxScore:     score,
		MinScore:     score,
	})
	s.causes[cause]++
	s.groupGames()
}

// groupGames merges every full run of GroupSize records at a level into one
// record of the next level, oldest first.
func (s *StatsManager) groupGames() {
	for level := 0; ; level++ {
		var records, rest []GameRecord
		for _, g := range s.games {
			if g.CompressionIndex == level {
				records = append(records, g)
			} else {
				rest = append(rest, g)
			}
		}
		if len(records) < GroupSize {
			return
		}

		full := len(records) / GroupSize * GroupSize
		for i := 0; i < full; i += GroupSize {
			rest = append(rest, mergeRecords(records[i:i+GroupSize], level+1))
		}
		rest = append(rest, records[full:]...)

		sort.SliceStable(rest, func(i, j int) bool {
			return rest[i].CompressionIndex > rest[j].CompressionIndex
		})
		s.games = rest
	}
}

func mergeRecords(group []GameRecord, level int) GameRecord {
	merged := GameRecord{
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
	}

	var totalScore float64
	medians := make([]float64, 0, len(group))
	for _, g := range group {
		if g.MaxScore > merged.MaxScore {
			merged.MaxScore = g.MaxScore
		}
		if g.MinScore < merged.MinScore {
			merged.MinScore = g.MinScore
		}
		if g.EndTime.After(merged.EndTime) {
			merged.EndTime = g.EndTime
		}
		totalScore += g.AverageScore * float64(g.GamesCount)
		merged.GamesCount += g.GamesCount
		for i := 0; i < g.GamesCount; i++ {
			medians = append(medians, g.MedianScore)
		}
	}

	merged.AverageScore = totalScore / float64(merged.GamesCount)
	merged.MedianScore = median(medians)
	return merged
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// GetStats returns a copy of the records, most compressed first.
func (s *StatsManager) GetStats() []GameRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]GameRecord(nil), s.games...)
}

func (s *StatsManager) GetGamesPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, g := range s.games {
		total += g.GamesCount
	}
	return total
}

func (s *StatsManager) GetAverageScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var totalScore float64
	var totalGames int
	for _, g := range s.games {
		totalScore += g.AverageScore * float64(g.GamesCount)
		totalGames += g.GamesCount
	}
	if totalGames == 0 {
		return 0
	}
	return totalScore / float64(totalGames)
}

// GetMedianScore is exact until records are grouped, then a median of
// group medians.
func (s *StatsManager) GetMedianScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var all []float64
	for _, g := range s.games {
		for i := 0; i < g.GamesCount; i++ {
			all = append(all, g.MedianScore)
		}
	}
	return median(all)
}

func (s *StatsManager) GetMaxScore() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	best := 0
	for _, g := range s.games {
		if g.MaxScore > best {
			best = g.MaxScore
		}
	}
	return best
}

// Causes counts finished games per removal cause.
func (s *StatsManager) Causes() map[string]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[string]int, len(s.causes))
	for k, v := range s.causes {
		out[k] = v
	}
	return out
}
