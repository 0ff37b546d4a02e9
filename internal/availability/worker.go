package availability

import (
	"sync"
	"time"
)

// Input 一次计算请求
type Input struct {
	Slots      []Slot      `json:"slots"`
	Selections []Selection `json:"selections"`
	Options    Options     `json:"options"`
}

// Result 计算结果，Seq 与 Submit 返回值对应
type Result struct {
	Seq      uint64        `json:"seq"`
	Table    Table         `json:"table"`
	Duration time.Duration `json:"-"`
}

// Worker 单 goroutine 的后台计算器
// Submit 从不阻塞；未被处理的旧请求会被新请求覆盖，结果通道只保留最新一份。
type Worker struct {
	mu      sync.Mutex
	pending *Input
	seq     uint64
	closed  bool

	notify  chan struct{}
	results chan Result
	done    chan struct{}
	wg      sync.WaitGroup

	observe func(time.Duration)
}

// NewWorker 启动 Worker；observe 可为 nil，用于上报计算耗时
func NewWorker(observe func(time.Duration)) *Worker {
	w := &Worker{
		notify:  make(chan struct{}, 1),
		results: make(chan Result, 1),
		done:    make(chan struct{}),
		observe: observe,
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Submit 提交输入，返回本次请求序号；Worker 已关闭时返回 0
func (w *Worker) Submit(in Input) uint64 {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0
	}
	w.seq++
	seq := w.seq
	w.pending = &in
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
	return seq
}

// Results 结果通道，Close 后关闭
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Close 停止 goroutine 并等待其退出，可重复调用
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()
	defer close(w.results)

	for {
		select {
		case <-w.done:
			return
		case <-w.notify:
		}

		w.mu.Lock()
		in, seq := w.pending, w.seq
		w.pending = nil
		w.mu.Unlock()
		if in == nil {
			continue
		}

		start := time.Now()
		table := Calculate(in.Slots, in.Selections, in.Options)
		elapsed := time.Since(start)
		if w.observe != nil {
			w.observe(elapsed)
		}

		// 丢弃尚未被读取的旧结果，只保留最新一份
		select {
		case <-w.results:
		default:
		}
		select {
		case w.results <- Result{Seq: seq, Table: table, Duration: elapsed}:
		case <-w.done:
			return
		}
	}
}
