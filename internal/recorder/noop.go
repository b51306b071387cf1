package recorder

import "StockLab/internal/model"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *AnalysisRun) error                  { return nil }
func (n *NoopRecorder) RecordSnapshot(_ *model.Indicators) error        { return nil }
func (n *NoopRecorder) RecordSentiment(_ []model.TickerSentiment) error { return nil }
func (n *NoopRecorder) RecordPortfolio(_ *PortfolioRun) error           { return nil }
func (n *NoopRecorder) Close() error                                    { return nil }
