package ui

import "sync/atomic"

type Stats struct {
	ChaptersFetched atomic.Int64
	ChaptersFailed  atomic.Int64
	BytesFetched    atomic.Int64
}
