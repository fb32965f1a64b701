package main

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// progressRenderer turns dispatcher chunk-completion callbacks into one
// terminal progress bar per running stage. It is silent when stderr is not a
// terminal.
type progressRenderer struct {
	mu      sync.Mutex
	bars    map[string]*progressbar.ProgressBar
	enabled bool
}

func newProgressRenderer() *progressRenderer {
	return &progressRenderer{
		bars:    make(map[string]*progressbar.ProgressBar),
		enabled: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// update implements the stage progress callback. Stages run one at a time,
// but chunk callbacks inside a stage arrive from many workers, hence the lock.
func (p *progressRenderer) update(stage string, completed, total int) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[stage]
	if !ok {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(stage),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		)
		p.bars[stage] = bar
	}
	_ = bar.Set(completed)
}

// finish clears any bar still on screen.
func (p *progressRenderer) finish() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bar := range p.bars {
		_ = bar.Finish()
	}
}
