package cache

// lruList is an intrusive doubly-linked list ordered from most to least
// recently used. It is not safe for concurrent use; the owning shard's
// mutex must be held.
type lruList[K comparable] struct {
	head  *lruNode[K]
	tail  *lruNode[K]
	count int
}

// lruNode is a single list element holding a cache key.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

func newLRUList[K comparable]() *lruList[K] {
	return &lruList[K]{}
}

func (l *lruList[K]) len() int { return l.count }

// pushFront inserts a new node for key at the front of the list.
func (l *lruList[K]) pushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.count++
	return n
}

// moveToFront marks a node as most recently used.
func (l *lruList[K]) moveToFront(n *lruNode[K]) {
	if l.head == n {
		return
	}
	l.unlink(n)
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.count++
}

// remove unlinks a node from the list.
func (l *lruList[K]) remove(n *lruNode[K]) {
	l.unlink(n)
	n.prev = nil
	n.next = nil
}

// removeOldest unlinks and returns the least recently used key.
func (l *lruList[K]) removeOldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	n := l.tail
	l.unlink(n)
	return n.key, true
}

// unlink detaches n and decrements the count. Callers re-insert or
// discard the node.
func (l *lruList[K]) unlink(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if l.head == n {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if l.tail == n {
		l.tail = n.prev
	}
	l.count--
}
