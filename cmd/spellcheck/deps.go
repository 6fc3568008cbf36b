package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/spell"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/verdictcache"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

// deps holds the clients a command opened. close releases all of them.
type deps struct {
	db      *postgres.Client
	rdb     *redis.Client
	cache   *verdictcache.Cache
	sinks   []sink.Sink
	checker *health.Checker
}

func (d *deps) close() {
	if err := sink.CloseAll(d.sinks); err != nil {
		slog.Warn("closing sinks", "error", err)
	}
	if d.rdb != nil {
		d.rdb.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

func dependencyDown(name string, err error) error {
	return apperrors.Newf(apperrors.ErrDependencyDown, apperrors.ExitDependency, "%s: %v", name, err)
}

func (a *app) postgres() (*postgres.Client, error) {
	db, err := postgres.New(a.cfg.Postgres)
	if err != nil {
		return nil, dependencyDown("postgres", err)
	}
	return db, nil
}

func (a *app) needsPostgres() bool {
	return a.cfg.Input.Source == config.SourcePostgres || a.cfg.HasSink(config.SinkPostgres)
}

// open connects to every dependency the configuration enables and registers
// each with the health checker.
func (a *app) open(useCache bool) (*deps, error) {
	d := &deps{checker: health.NewChecker(5 * time.Second)}
	if a.needsPostgres() {
		db, err := a.postgres()
		if err != nil {
			return nil, err
		}
		d.db = db
		d.checker.RegisterPinger("postgres", db)
	}
	if useCache && a.cfg.Redis.Enabled {
		rdb, err := redis.NewClient(a.cfg.Redis)
		if err != nil {
			d.close()
			return nil, dependencyDown("redis", err)
		}
		d.rdb = rdb
		d.checker.RegisterPinger("redis", rdb)
		cache, err := verdictcache.New(rdb, a.cfg.Redis.LocalCacheSize, a.cfg.Redis.CacheTTL)
		if err != nil {
			d.close()
			return nil, err
		}
		cache.UseBreaker(resilience.NewBreaker("redis", resilience.BreakerConfig{}))
		d.cache = cache
	}

	policy := resilience.Policy{}
	for _, name := range a.cfg.Output.Sinks {
		switch name {
		case config.SinkCSV:
			d.sinks = append(d.sinks, sink.NewCSV(a.cfg.Output.CSVPath))
		case config.SinkPostgres:
			d.sinks = append(d.sinks, sink.NewPostgres(store.New(d.db), policy))
		case config.SinkKafka:
			producer := kafka.NewProducer(a.cfg.Kafka, a.cfg.Kafka.Topics.DocumentErrors)
			d.checker.RegisterPinger("kafka", producer)
			d.sinks = append(d.sinks, sink.NewKafka(producer, a.cfg.Kafka.BatchSize, policy))
		}
	}
	return d, nil
}

func (a *app) classifier() (*spell.Classifier, error) {
	var (
		dict *spell.Dictionary
		err  error
	)
	if a.cfg.Spell.DictionaryPath != "" {
		dict, err = spell.LoadDictionaryFile(a.cfg.Spell.DictionaryPath, a.cfg.Spell.MaxEditDistance)
	} else {
		dict, err = spell.DefaultDictionary(a.cfg.Spell.MaxEditDistance)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("dictionary loaded", "words", dict.Len(), "fingerprint", dict.Fingerprint())
	return spell.NewClassifier(dict, spell.Options{
		DomainExceptions:       a.cfg.Spell.DomainExceptions,
		LiteralIdentifierClass: a.cfg.Spell.LiteralIdentifierClass,
	}), nil
}

// documents loads the input record set. With a qrels file only judged
// documents are kept.
func (a *app) documents(ctx context.Context, db *postgres.Client) ([]records.Document, error) {
	var (
		docs []records.Document
		err  error
	)
	switch a.cfg.Input.Source {
	case config.SourcePostgres:
		docs, err = store.New(db).LoadDocuments(ctx)
		if err != nil {
			return nil, dependencyDown("postgres", err)
		}
	default:
		docs, err = records.ReadMetadataFile(a.cfg.Input.MetadataPath)
		if err != nil {
			return nil, err
		}
	}
	if a.cfg.Input.QrelsPath == "" {
		return docs, nil
	}
	qrels, err := records.LoadQrelsFile(a.cfg.Input.QrelsPath)
	if err != nil {
		return nil, err
	}
	judged := records.SelectJudged(docs, qrels)
	slog.Info("documents selected by relevance judgments",
		"loaded", len(docs),
		"judgments", len(qrels),
		"selected", len(judged),
	)
	return judged, nil
}
