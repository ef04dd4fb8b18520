// Package pg connects to PostgreSQL through a pgx/v5 pool and applies goose
// migrations shipped inside the binary.
//
//	pool, err := pg.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, auditstore.Migrations(), log); err != nil {
//		return err
//	}
//
// Healthcheck returns a probe usable by the readiness endpoint.
package pg
