package records

import (
	"context"
	"fmt"
	"testing"

	"notedash/internal/kv"
)

var benchKinds = []Kind{KindNote, KindPost, KindTravel}

func BenchmarkHub_Subscribe(b *testing.B) {
	hub := NewHub(256)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, cancel := hub.Subscribe(newConnID())
			cancel()
		}
	})
}

// BenchmarkHub_Broadcast fans out to subscribers split across kinds so two
// thirds of them skip each event.
func BenchmarkHub_Broadcast(b *testing.B) {
	for _, subs := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("subscribers_%d", subs), func(b *testing.B) {
			hub := NewHub(256)
			for i := 0; i < subs; i++ {
				sub, cancel := hub.Subscribe(newConnID(), benchKinds[i%len(benchKinds)])
				b.Cleanup(cancel)
				go func() {
					for range sub.Ch {
					}
				}()
			}

			ev := ChangeEvent{Kind: KindNote, Type: EventUpdated, ID: "n1", Snapshot: []byte(`[]`)}
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					hub.Broadcast(context.Background(), ev)
				}
			})
		})
	}
}

func BenchmarkHub_ConcurrentSubscribeUnsubscribe(b *testing.B) {
	hub := NewHub(256)
	ev := ChangeEvent{Kind: KindPost, Type: EventCreated, ID: "p1", Snapshot: []byte(`[]`)}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, cancel := hub.Subscribe(newConnID(), KindPost)
			hub.Broadcast(context.Background(), ev)
			cancel()
		}
	})
}

// BenchmarkNoteStore_Update covers the full write path: clone, marshal,
// persist and publish.
func BenchmarkNoteStore_Update(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("notes_%d", size), func(b *testing.B) {
			ctx := context.Background()
			s, err := Open(ctx, kv.NewMemory(), WithBus(NewHub(16)))
			if err != nil {
				b.Fatal(err)
			}
			var last *Note
			for i := 0; i < size; i++ {
				if last, err = s.Notes.Create(ctx, NoteInput{Title: "bench", Content: "<p>body</p>"}); err != nil {
					b.Fatal(err)
				}
			}

			content := "<p>edited</p>"
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Notes.Update(ctx, last.ID, NotePatch{Content: &content}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
