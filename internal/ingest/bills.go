package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/fetcher"
)

// billTypes are the bill families that can become law.
var billTypes = []string{"hr", "s", "hjres", "sjres"}

// billStatusDoc is the subset of a Congress.gov bill status file the stage
// reads: identity, introduction, enactment evidence, and subject tags.
type billStatusDoc struct {
	Bill struct {
		Type           string `xml:"type"`
		Number         string `xml:"number"`
		Title          string `xml:"title"`
		IntroducedDate string `xml:"introducedDate"`
		LatestAction   struct {
			Text string `xml:"text"`
		} `xml:"latestAction"`
		Laws struct {
			Items []struct {
				Number string `xml:"number"`
			} `xml:"item"`
		} `xml:"laws"`
		PolicyArea struct {
			Name string `xml:"name"`
		} `xml:"policyArea"`
		Subjects struct {
			LegislativeSubjects struct {
				Items []struct {
					Name string `xml:"name"`
				} `xml:"item"`
			} `xml:"legislativeSubjects"`
		} `xml:"subjects"`
	} `xml:"bill"`
}

// enacted reports whether the bill became law: either a laws entry exists
// or the latest action says so.
func (d *billStatusDoc) enacted() bool {
	if len(d.Bill.Laws.Items) > 0 {
		return true
	}
	action := strings.ToLower(d.Bill.LatestAction.Text)
	return strings.Contains(action, "became public law") || strings.Contains(action, "became private law")
}

// subjects returns the policy area followed by the legislative subject tags.
func (d *billStatusDoc) subjects() []string {
	var tags []string
	if d.Bill.PolicyArea.Name != "" {
		tags = append(tags, d.Bill.PolicyArea.Name)
	}
	for _, item := range d.Bill.Subjects.LegislativeSubjects.Items {
		if item.Name != "" {
			tags = append(tags, item.Name)
		}
	}
	return tags
}

// BillsStage rebuilds the bills table from downloaded BILLSTATUS archives,
// retaining only enacted bills.
type BillsStage struct{}

// Name implements Stage.
func (s *BillsStage) Name() string { return "bills" }

// Tables implements Stage.
func (s *BillsStage) Tables() []string { return []string{"bills"} }

var billInsert = db.InsertConfig{
	Table:        "bills",
	Columns:      []string{"bill_number", "title", "date_introduced", "congress", "subjects"},
	ConflictKeys: []string{"bill_number"},
}

// Run implements Stage.
func (s *BillsStage) Run(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("stage", s.Name()))
	cfg := env.Config

	if err := db.ResetTable(ctx, env.Pool, "bills", "bills_bill_id_seq"); err != nil {
		return nil, err
	}

	var stats batchStats
	var examined, kept, malformed, missingArchives int
	batch := make([][]any, 0, billBatchSize)

	for congress := cfg.Congress.StartCongress; congress <= cfg.Congress.EndCongress; congress++ {
		for _, billType := range billTypes {
			zipPath := filepath.Join(cfg.Bills.DataDir, fmt.Sprintf("BILLSTATUS-%d-%s.zip", congress, billType))
			if _, err := os.Stat(zipPath); err != nil {
				log.Warn("bill status archive missing, skipping", zap.String("path", zipPath))
				missingArchives++
				continue
			}

			err := fetcher.EachZIPMember(zipPath, func(name string, r io.Reader) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Archives carry README and manifest entries next to
				// the bill files.
				if !isBillStatusXML(name) {
					return nil
				}
				examined++

				doc, err := fetcher.DecodeXML[billStatusDoc](r)
				if err != nil {
					malformed++
					return nil
				}
				if !doc.enacted() || doc.Bill.Number == "" {
					return nil
				}

				kept++
				billNumber := strings.ToLower(doc.Bill.Type) + doc.Bill.Number
				var introduced any
				if t, err := time.Parse("2006-01-02", doc.Bill.IntroducedDate); err == nil {
					introduced = t
				}

				batch = append(batch, []any{billNumber, doc.Bill.Title, introduced, congress, doc.subjects()})
				if len(batch) >= billBatchSize {
					batch = flushBatch(ctx, env.Pool, billInsert, batch, log, &stats)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	flushBatch(ctx, env.Pool, billInsert, batch, log, &stats)

	log.Info("bills loaded",
		zap.Int("examined", examined),
		zap.Int("enacted", kept),
		zap.Int("malformed", malformed),
		zap.Int64("inserted", stats.inserted),
	)

	return &Result{
		RowsInserted: stats.inserted,
		Metadata: map[string]any{
			"examined":         examined,
			"enacted":          kept,
			"malformed":        malformed,
			"missing_archives": missingArchives,
			"failed_batches":   stats.failedBatches,
		},
	}, nil
}

// isBillStatusXML reports whether a ZIP member name is a bill status
// document rather than a README or manifest shipped alongside them.
func isBillStatusXML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xml")
}
