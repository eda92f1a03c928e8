package walk

// deque is a double-ended queue used as the traversal worklist. BFS
// dequeues from the front, DFS from the back of the same structure, so
// the ordering contract of both modes falls out of one type.
type deque[T any] struct {
	items []T
}

func (d *deque[T]) pushBack(v T) {
	d.items = append(d.items, v)
}

func (d *deque[T]) popFront() T {
	v := d.items[0]
	d.items = d.items[1:]
	return v
}

func (d *deque[T]) popBack() T {
	v := d.items[len(d.items)-1]
	d.items = d.items[:len(d.items)-1]
	return v
}

func (d *deque[T]) len() int {
	return len(d.items)
}
