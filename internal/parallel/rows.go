package parallel

// bandsPerWorker oversubscribes bands so stealing can even out slow rows.
const bandsPerWorker = 4

// minBandRows keeps bands from degenerating into per-row closures.
const minBandRows = 4

// Rows splits [0, height) into contiguous bands and runs band(y0, y1) for
// each of them on the pool, returning when all bands are done.
// A nil pool runs one band on the calling goroutine.
func (p *WorkerPool) Rows(height int, band func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if p == nil || p.workers == 1 || height <= minBandRows {
		band(0, height)
		return
	}

	step := max((height+p.workers*bandsPerWorker-1)/(p.workers*bandsPerWorker), minBandRows)
	work := make([]func(), 0, (height+step-1)/step)
	for y := 0; y < height; y += step {
		y0, y1 := y, min(y+step, height)
		work = append(work, func() { band(y0, y1) })
	}
	p.ExecuteAll(work)
}
