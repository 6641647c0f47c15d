package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Sternrassler/users-pagination/pkg/pagination"
	"github.com/Sternrassler/users-pagination/pkg/viewmodel"
)

// pager is the interactive loop around a Composer. Intermediate views
// arrive through a subscription and are printed as progress notices; the
// view an action settles on is rendered in full.
type pager struct {
	composer *viewmodel.Composer
	out      io.Writer
	timeout  time.Duration

	mu sync.Mutex
}

func newPager(composer *viewmodel.Composer, out io.Writer, timeout time.Duration) *pager {
	return &pager{
		composer: composer,
		out:      out,
		timeout:  timeout,
	}
}

// Run loads the first page, then executes commands read from in until quit,
// end of input or ctx is done.
func (p *pager) Run(ctx context.Context, in io.Reader) error {
	updates, unsubscribe := p.composer.Subscribe(32)
	flush := make(chan chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.watch(updates, flush)
	}()
	defer func() {
		unsubscribe()
		<-done
	}()

	catchUp := func() {
		ack := make(chan struct{})
		flush <- ack
		<-ack
	}

	v := p.act(ctx, p.composer.Load)
	catchUp()
	p.show(v)

	scanner := bufio.NewScanner(in)
	for {
		p.printf("> ")
		if !scanner.Scan() {
			p.printf("\n")
			if ctx.Err() != nil {
				return nil
			}
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		cmd, err := parseCommand(line)
		if err != nil {
			p.printf("%v\n", err)
			continue
		}

		switch cmd.kind {
		case cmdQuit:
			return nil
		case cmdHelp:
			p.printf("%s\n", helpText)
			continue
		}

		v := p.execute(ctx, cmd)
		catchUp()
		p.show(v)
	}
}

func (p *pager) execute(ctx context.Context, cmd command) viewmodel.ViewState {
	filter := p.composer.Filter()

	switch cmd.kind {
	case cmdNextPage:
		return p.act(ctx, func(ctx context.Context) viewmodel.ViewState {
			return p.composer.StepPage(ctx, pagination.Forward, filter)
		})
	case cmdPrevPage:
		return p.act(ctx, func(ctx context.Context) viewmodel.ViewState {
			return p.composer.StepPage(ctx, pagination.Backward, filter)
		})
	case cmdGoTo:
		return p.act(ctx, func(ctx context.Context) viewmodel.ViewState {
			return p.composer.GoToPage(ctx, filter, cmd.page)
		})
	case cmdWindow:
		return p.act(ctx, func(ctx context.Context) viewmodel.ViewState {
			return p.composer.StepWindow(ctx, cmd.dir, filter)
		})
	case cmdSearch:
		return p.act(ctx, func(ctx context.Context) viewmodel.ViewState {
			return p.composer.Search(ctx, cmd.text)
		})
	case cmdReload:
		page := p.composer.CurrentPage()
		return p.act(ctx, func(ctx context.Context) viewmodel.ViewState {
			return p.composer.GoToPage(ctx, filter, page)
		})
	default:
		return p.composer.State()
	}
}

// act runs one navigation action under the configured request timeout.
func (p *pager) act(ctx context.Context, fn func(context.Context) viewmodel.ViewState) viewmodel.ViewState {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// watch prints progress for subscribed views. A flush request drains the
// views already queued before it is acknowledged.
func (p *pager) watch(updates <-chan viewmodel.ViewState, flush <-chan chan struct{}) {
	for {
		select {
		case v, ok := <-updates:
			if !ok {
				return
			}
			p.progress(v)
		case ack := <-flush:
			for drained := false; !drained; {
				select {
				case v, ok := <-updates:
					if !ok {
						close(ack)
						return
					}
					p.progress(v)
				default:
					drained = true
				}
			}
			close(ack)
		}
	}
}

func (p *pager) progress(v viewmodel.ViewState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	renderProgress(p.out, v)
}

func (p *pager) show(v viewmodel.ViewState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	render(p.out, v)
}

func (p *pager) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}
