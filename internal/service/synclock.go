package service

import "sync"

// keyedMutex 按连接 ID 串行化全量同步
// 两个并发全量同步会在 before/after 快照上竞争，错删对方刚插入的行，
// 因此同一连接必须单飞；不同连接互不影响
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*sync.Mutex)}
}

// Lock 获取 key 对应的互斥锁，返回解锁函数
func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
