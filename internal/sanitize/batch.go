package sanitize

import "context"

// RunBatch sanitizes each request in turn. A fatal error for one archive is
// recorded in its report and the batch moves on; only cancellation of ctx
// stops it early, in which case the remaining requests get no report.
func (p *Pipeline) RunBatch(ctx context.Context, requests []Request) []Report {
	reports := make([]Report, 0, len(requests))
	for _, req := range requests {
		if ctx.Err() != nil {
			break
		}
		report, _ := p.Run(ctx, req)
		reports = append(reports, report)
	}
	return reports
}
