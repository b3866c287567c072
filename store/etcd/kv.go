package etcd

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Put 写入 key；ttl > 0 时绑定新租约，到期自动删除。覆盖时旧值的租约被撤销
func (c *Client) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	opts := []clientv3.OpOption{clientv3.WithPrevKV()}
	if ttl > 0 {
		lease, err := c.client.Grant(ctx, leaseSeconds(ttl))
		if err != nil {
			return err
		}
		opts = append(opts, clientv3.WithLease(lease.ID))
	}

	resp, err := c.client.Put(ctx, key, value, opts...)
	if err != nil {
		return err
	}
	if resp.PrevKv != nil {
		c.revoke(ctx, resp.PrevKv.Lease)
	}
	return nil
}

// Get 读取 key，不存在时 ok 为 false
func (c *Client) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	if c.client == nil {
		return "", false, ErrNotInitialized
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// Delete 删除 key 并撤销其租约，返回实际删除的数量
func (c *Client) Delete(ctx context.Context, key string) (int64, error) {
	if c.client == nil {
		return 0, ErrNotInitialized
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Delete(ctx, key, clientv3.WithPrevKV())
	if err != nil {
		return 0, err
	}
	for _, kv := range resp.PrevKvs {
		c.revoke(ctx, kv.Lease)
	}
	return resp.Deleted, nil
}

// revoke 每个 key 的租约由 Put 单独授予，撤销失败只记录，租约到期后自行回收
func (c *Client) revoke(ctx context.Context, lease int64) {
	if lease == 0 {
		return
	}
	if _, err := c.client.Revoke(ctx, clientv3.LeaseID(lease)); err != nil {
		c.logger.Warn().Err(err).Int64("lease", lease).Msg("etcd lease revoke failed")
	}
}

// ScanPrefix 按 key 顺序分页遍历前缀下的全部 key。fn 返回错误时停止
func (c *Client) ScanPrefix(ctx context.Context, prefix string, pageSize int64, fn func(key string) error) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	if pageSize <= 0 {
		pageSize = 500
	}

	end := clientv3.GetPrefixRangeEnd(prefix)
	start := prefix
	for {
		resp, err := c.page(ctx, start, end, pageSize)
		if err != nil {
			return err
		}
		for _, kv := range resp.Kvs {
			if err := fn(string(kv.Key)); err != nil {
				return err
			}
		}
		if !resp.More || len(resp.Kvs) == 0 {
			return nil
		}
		start = string(resp.Kvs[len(resp.Kvs)-1].Key) + "\x00"
	}
}

func (c *Client) page(ctx context.Context, start, end string, limit int64) (*clientv3.GetResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.Get(ctx, start,
		clientv3.WithRange(end),
		clientv3.WithKeysOnly(),
		clientv3.WithLimit(limit),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	)
}
