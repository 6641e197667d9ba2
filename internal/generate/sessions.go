package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mirelabs/bankforge/internal/randx"
)

// sessionTopics is ordered; the order is part of the deterministic draw
// sequence.
var sessionTopics = []string{"ACCOUNT_INQUIRY", "DISPUTE", "LOAN", "TECHNICAL", "COMPLAINT"}

var topicOpeners = map[string][]string{
	"ACCOUNT_INQUIRY": {
		"I need to check my balance",
		"Why was I charged a fee?",
		"Can you explain this transaction?",
		"I want to open a new account",
	},
	"DISPUTE": {
		"This transaction wasn't mine",
		"I was charged twice",
		"Fraudulent activity on my account",
		"Unauthorized withdrawal",
	},
	"LOAN": {
		"I need information about my loan",
		"Can I refinance?",
		"Payment didn't go through",
		"Late payment fee dispute",
	},
	"TECHNICAL": {
		"Can't log into online banking",
		"App keeps crashing",
		"Two-factor authentication issues",
		"Password reset needed",
	},
	"COMPLAINT": {
		"Terrible service at branch",
		"Been on hold for an hour",
		"Account frozen without notice",
		"Discrimination complaint",
	},
}

var clusterTopics = []string{"COMPLAINT", "DISPUTE", "LOAN", "ACCOUNT_INQUIRY"}
var clusterTopicWeights = []int{40, 30, 20, 10}

var sessionChannels = []string{"WEB", "MOBILE", "PHONE", "BRANCH"}

type transcriptMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type transcript struct {
	Messages []transcriptMessage `json:"messages"`
}

func buildTranscript(opener string, start time.Time) (string, error) {
	stamp := func(t time.Time) string { return t.Format(time.RFC3339) }
	raw, err := json.Marshal(transcript{Messages: []transcriptMessage{
		{"customer", opener, stamp(start)},
		{"agent", "I understand your concern. Let me help you with that.", stamp(start.Add(time.Minute))},
		{"customer", "Thank you for looking into this.", stamp(start.Add(2 * time.Minute))},
	}})
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	return string(raw), nil
}

func (p *Pipeline) generateSessions(ctx context.Context) error {
	customerIDs, err := p.customerIDs(ctx)
	if err != nil {
		return err
	}
	credentials, err := p.credentialsByCustomer(ctx)
	if err != nil {
		return err
	}

	cluster := make(map[int64]bool, len(p.findings.ClusterCustomerIDs))
	for _, id := range p.findings.ClusterCustomerIDs {
		cluster[id] = true
	}

	columns := []string{
		"customer_id", "credential_id", "session_start", "session_end",
		"channel", "agent_id", "topic", "sentiment_score",
		"resolution_status", "transcript",
	}

	rows := make([][]interface{}, 0, p.cfg.Generate.Sessions)
	for i := 0; i < p.cfg.Generate.Sessions; i++ {
		customerID := randx.Choice(p.src, customerIDs)

		topic := randx.Choice(p.src, sessionTopics)

		var sentiment float64
		var resolution string
		if cluster[customerID] {
			// the identity-cluster households contact support often,
			// angrily, and rarely get closure
			topic = randx.WeightedChoice(p.src, clusterTopics, clusterTopicWeights)
			sentiment = p.src.Uniform(-0.8, -0.3)
			resolution = randx.Choice(p.src, []string{"ESCALATED", "PENDING"})
		} else {
			switch topic {
			case "COMPLAINT":
				sentiment = p.src.Uniform(-0.9, -0.3)
				resolution = randx.Choice(p.src, []string{"ESCALATED", "RESOLVED", "PENDING"})
			case "DISPUTE":
				sentiment = p.src.Uniform(-0.5, 0.2)
				resolution = randx.Choice(p.src, []string{"RESOLVED", "PENDING", "ESCALATED"})
			default:
				sentiment = p.src.Uniform(-0.2, 0.9)
				resolution = randx.Choice(p.src, []string{"RESOLVED", "RESOLVED", "PENDING"})
			}
		}

		start := p.src.PastTime(p.now, 365*24*time.Hour)
		end := start.Add(time.Duration(p.src.Between(5, 120)) * time.Minute)

		body, err := buildTranscript(randx.Choice(p.src, topicOpeners[topic]), start)
		if err != nil {
			return err
		}

		var credentialID interface{}
		if id, ok := credentials[customerID]; ok {
			credentialID = id
		}

		rows = append(rows, []interface{}{
			customerID,
			credentialID,
			start,
			end,
			randx.Choice(p.src, sessionChannels),
			fmt.Sprintf("AGENT_%d", p.src.Between(100, 999)),
			topic,
			decimal.NewFromFloat(sentiment).Round(2),
			resolution,
			body,
		})
	}

	_, err = p.st.InsertMany(ctx, "service_sessions", columns, rows)
	return err
}

func (p *Pipeline) credentialsByCustomer(ctx context.Context) (map[int64]int64, error) {
	rows, err := p.st.Select(ctx, p.st.Builder().
		Select("credential_id", "customer_id").From("credentials").OrderBy("credential_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to read credential map: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var credentialID, customerID int64
		if err := rows.Scan(&credentialID, &customerID); err != nil {
			return nil, err
		}
		out[customerID] = credentialID
	}
	return out, rows.Err()
}
