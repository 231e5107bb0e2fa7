package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/polymer/pkg/metrics"
)

func newQueue(capacity int) *InMemoryQueue {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	return NewInMemoryQueue(WithCapacity(capacity), WithMetrics(m))
}

func job(id string) Job {
	return Job{ID: id, Ctx: context.Background(), Run: func(context.Context) {}, EnqueuedAt: time.Now()}
}

func TestInMemoryQueueBasics(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		q := newQueue(2)
		ctx := context.Background()
		So(q.Len(ctx), ShouldEqual, 0)
		So(q.Cap(), ShouldEqual, 2)

		Convey("When a job is enqueued and dequeued", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 1)
			got := <-q.Dequeue(ctx)

			Convey("Then the same job comes out", func() {
				So(got.ID, ShouldEqual, "a")
				So(q.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, job("b")), ShouldBeTrue)

			Convey("Then further jobs are refused", func() {
				So(q.Enqueue(ctx, job("c")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the caller's context is already done", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(q.Enqueue(cctx, job("a")), ShouldBeFalse)
		})
	})
}

func TestInMemoryQueueClose(t *testing.T) {
	Convey("Given a queue holding jobs", t, func() {
		q := newQueue(10)
		ctx := context.Background()
		So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
		So(q.Enqueue(ctx, job("b")), ShouldBeTrue)

		Convey("When it is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then queued jobs drain and new jobs are refused", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, job("c")), ShouldBeFalse)

				var ids []string
				for j := range q.Dequeue(ctx) {
					ids = append(ids, j.ID)
				}
				So(ids, ShouldResemble, []string{"a", "b"})
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}

func TestInMemoryQueueConcurrentAccess(t *testing.T) {
	Convey("Given producers and consumers sharing a queue", t, func() {
		q := newQueue(100)
		ctx := context.Background()
		const producers, perProducer = 10, 100

		var consumed sync.WaitGroup
		consumed.Add(producers * perProducer)
		for i := 0; i < 4; i++ {
			go func() {
				for range q.Dequeue(ctx) {
					consumed.Done()
				}
			}()
		}

		var produced sync.WaitGroup
		for i := 0; i < producers; i++ {
			produced.Add(1)
			go func(id int) {
				defer produced.Done()
				for j := 0; j < perProducer; j++ {
					for !q.Enqueue(ctx, job(fmt.Sprintf("%d-%d", id, j))) {
						time.Sleep(time.Millisecond)
					}
				}
			}(i)
		}
		produced.Wait()
		consumed.Wait()

		So(q.Len(ctx), ShouldEqual, 0)
		So(q.Close(), ShouldBeNil)
	})
}
