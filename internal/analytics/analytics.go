package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"furia-chatter/internal/storage"
)

// DailyStats aggregates one UTC day of interactions
type DailyStats struct {
	Date          string                `json:"date"`
	TotalMessages int                   `json:"total_messages"`
	UniqueUsers   int                   `json:"unique_users"`
	ByRoute       map[storage.Route]int `json:"by_route"`
	UserStats     map[int64]UserStats   `json:"user_stats"`
}

type UserStats struct {
	UserID   int64 `json:"user_id"`
	Messages int   `json:"messages"`
	LLMCalls int   `json:"llm_calls"`
	Commands int   `json:"commands"`
}

// AnalyzeDailyLogs counts the events that fall on targetDate
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByRoute:   make(map[storage.Route]int),
		UserStats: make(map[int64]UserStats),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}

		stats.TotalMessages++
		stats.ByRoute[event.Route]++

		us := stats.UserStats[event.UserID]
		us.UserID = event.UserID
		us.Messages++
		switch event.Route {
		case storage.RouteLiteral:
			us.Commands++
		case storage.RoutePrompt:
			us.Commands++
			us.LLMCalls++
		case storage.RouteGenerated:
			us.LLMCalls++
		}
		stats.UserStats[event.UserID] = us
	}

	stats.UniqueUsers = len(stats.UserStats)
	return stats
}

// GenerateReportSummary renders the stats as a short admin report
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Relatório do bot FURIA em %s\n\n", ds.Date)
	fmt.Fprintf(&b, "- Total de mensagens: %d\n", ds.TotalMessages)
	fmt.Fprintf(&b, "- Usuários únicos: %d\n", ds.UniqueUsers)
	fmt.Fprintf(&b, "- Respostas diretas (comandos): %d\n", ds.ByRoute[storage.RouteLiteral])
	fmt.Fprintf(&b, "- Comandos via LLM: %d\n", ds.ByRoute[storage.RoutePrompt])
	fmt.Fprintf(&b, "- Perguntas livres via LLM: %d\n", ds.ByRoute[storage.RouteGenerated])

	if len(ds.UserStats) == 0 {
		return b.String()
	}

	ids := make([]int64, 0, len(ds.UserStats))
	for id := range ds.UserStats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Fprintf(&b, "\nAtividade por usuário (%d):\n", len(ids))
	for _, id := range ids {
		us := ds.UserStats[id]
		fmt.Fprintf(&b, "- Usuário %d: %d mensagens, %d chamadas ao LLM\n", id, us.Messages, us.LLMCalls)
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
