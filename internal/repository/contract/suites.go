// Package contract holds behavioural suites every repository driver must pass.
// Drivers call them from their own tests with a factory producing a clean store.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

type PlayerFactory func(t *testing.T) (repository.PlayerRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, players repository.PlayerRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// SamplePlayer builds a valid player; the shortname is derived from id so samples never collide.
func SamplePlayer(id int64, code, sex string) model.Player {
	return model.Player{
		ID:        id,
		Firstname: fmt.Sprintf("First%d", id),
		Lastname:  fmt.Sprintf("Last%d", id),
		Shortname: fmt.Sprintf("P.%03d", id),
		Sex:       sex,
		Country:   model.Country{Picture: "https://flags.example/" + code + ".png", Code: code},
		Picture:   fmt.Sprintf("https://img.example/%d.png", id),
		Data: model.PlayerData{
			Rank:   int(id),
			Points: 1000 * int(id),
			Weight: 80000,
			Height: 180 + int(id),
			Age:    25,
			Last:   []int{1, 0, 1, 0, 1},
		},
	}
}

func seed(t *testing.T, repo repository.PlayerRepository, ps ...model.Player) {
	t.Helper()
	for _, p := range ps {
		if _, err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed %d: %v", p.ID, err)
		}
	}
}

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := SamplePlayer(17, "SRB", "M")
		created, err := repo.Create(ctx, in)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Fatalf("timestamps not set: %+v", created)
		}
		got, err := repo.GetByID(ctx, 17)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Shortname != in.Shortname || got.Country != in.Country || got.Data.Rank != in.Data.Rank {
			t.Fatalf("mismatch: %+v", got)
		}
		if len(got.Data.Last) != model.LastMatchesLen || got.Data.Last[0] != 1 {
			t.Fatalf("last not round-tripped: %v", got.Data.Last)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("create_duplicate_id_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		seed(t, repo, SamplePlayer(1, "SUI", "M"))
		dup := SamplePlayer(1, "SUI", "M")
		dup.Shortname = "OTHER"
		if _, err := repo.Create(context.Background(), dup); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("create_duplicate_shortname_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		seed(t, repo, SamplePlayer(1, "SUI", "M"))
		dup := SamplePlayer(2, "SUI", "M")
		dup.Shortname = SamplePlayer(1, "", "").Shortname
		if _, err := repo.Create(context.Background(), dup); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("exists_by_id_or_shortname", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed(t, repo, SamplePlayer(5, "USA", "F"))

		cases := []struct {
			id        int64
			shortname string
			want      bool
		}{
			{5, "NOPE", true},
			{6, SamplePlayer(5, "", "").Shortname, true},
			{6, "NOPE", false},
		}
		for _, tc := range cases {
			got, err := repo.ExistsByIDOrShortname(ctx, tc.id, tc.shortname)
			if err != nil {
				t.Fatalf("exists: %v", err)
			}
			if got != tc.want {
				t.Fatalf("exists(%d,%q)=%v want %v", tc.id, tc.shortname, got, tc.want)
			}
		}
	})

	t.Run("shortname_taken_excludes_owner", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a, b := SamplePlayer(1, "USA", "F"), SamplePlayer(2, "USA", "F")
		seed(t, repo, a, b)

		taken, err := repo.ShortnameTaken(ctx, a.Shortname, a.ID)
		if err != nil || taken {
			t.Fatalf("owner must not collide with itself: taken=%v err=%v", taken, err)
		}
		taken, err = repo.ShortnameTaken(ctx, a.Shortname, b.ID)
		if err != nil || !taken {
			t.Fatalf("expected taken for another player: taken=%v err=%v", taken, err)
		}
	})

	t.Run("list_pagination_total_and_sort", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := int64(7); i >= 1; i-- {
			seed(t, repo, SamplePlayer(i, "ESP", "M"))
		}
		res, err := repo.List(ctx, repository.ListQuery{Sort: repository.DefaultSort, Page: repository.Page{Limit: 3, Offset: 0}})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		if res.Items[0].Data.Rank != 1 || res.Items[2].Data.Rank != 3 {
			t.Fatalf("expected rank order, got %d..%d", res.Items[0].Data.Rank, res.Items[2].Data.Rank)
		}

		res2, err := repo.List(ctx, repository.ListQuery{Sort: repository.Sort{Field: "data.points", Desc: true}, Page: repository.Page{Limit: 3, Offset: 6}})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 || res2.Items[0].ID != 1 {
			t.Fatalf("unexpected page2: %+v total=%d", res2.Items, res2.Total)
		}
	})

	t.Run("list_filter_and_count", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed(t, repo, SamplePlayer(1, "ESP", "M"), SamplePlayer(2, "ESP", "F"), SamplePlayer(3, "FRA", "M"))

		f := repository.PlayerFilter{CountryCode: "ESP", Sex: "M"}
		res, err := repo.List(ctx, repository.ListQuery{Filter: f, Sort: repository.DefaultSort, Page: repository.Page{Limit: 10}})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 1 || res.Items[0].ID != 1 || res.Total != 1 {
			t.Fatalf("unexpected filtered page: %+v", res)
		}
		n, err := repo.Count(ctx, repository.PlayerFilter{CountryCode: "ESP"})
		if err != nil || n != 2 {
			t.Fatalf("count=%d err=%v", n, err)
		}
		n, err = repo.Count(ctx, repository.PlayerFilter{})
		if err != nil || n != 3 {
			t.Fatalf("count all=%d err=%v", n, err)
		}
	})

	t.Run("list_empty_ok", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		res, err := repo.List(context.Background(), repository.ListQuery{Sort: repository.DefaultSort, Page: repository.Page{Limit: 10}})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 0 || res.Total != 0 {
			t.Fatalf("expected empty page, got %+v", res)
		}
	})

	t.Run("all_and_heights", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed(t, repo, SamplePlayer(1, "ESP", "M"), SamplePlayer(2, "FRA", "M"))

		all, err := repo.All(ctx)
		if err != nil || len(all) != 2 {
			t.Fatalf("all: len=%d err=%v", len(all), err)
		}
		hs, err := repo.Heights(ctx)
		if err != nil {
			t.Fatalf("heights: %v", err)
		}
		sum := 0.0
		for _, h := range hs {
			sum += h
		}
		if len(hs) != 2 || sum != 181+182 {
			t.Fatalf("unexpected heights %v", hs)
		}
	})

	t.Run("create_many_all_or_nothing", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		out, err := repo.CreateMany(ctx, []model.Player{SamplePlayer(1, "ESP", "M"), SamplePlayer(2, "ESP", "M")})
		if err != nil || len(out) != 2 {
			t.Fatalf("create many: len=%d err=%v", len(out), err)
		}
		n, _ := repo.Count(ctx, repository.PlayerFilter{})
		if n != 2 {
			t.Fatalf("expected 2 stored, got %d", n)
		}
	})

	t.Run("replace_keeps_created_at", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		orig, err := repo.Create(ctx, SamplePlayer(3, "ITA", "M"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		next := SamplePlayer(3, "ITA", "M")
		next.Firstname = "Jannik"
		next.Data.Last = []int{0, 0, 0, 0, 0}
		out, err := repo.Replace(ctx, next)
		if err != nil {
			t.Fatalf("replace: %v", err)
		}
		if out.Firstname != "Jannik" || out.Data.Last[0] != 0 {
			t.Fatalf("replace not applied: %+v", out)
		}
		if !out.CreatedAt.Equal(orig.CreatedAt) {
			t.Fatalf("createdAt changed: %v -> %v", orig.CreatedAt, out.CreatedAt)
		}
	})

	t.Run("replace_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Replace(context.Background(), SamplePlayer(42, "ITA", "M"))
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update_field_scoped", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed(t, repo, SamplePlayer(4, "GBR", "M"))

		rank, code := 1, "SCO"
		out, err := repo.Update(ctx, 4, model.PlayerUpdate{
			Country: &model.CountryPatch{Code: &code},
			Data:    &model.DataPatch{Rank: &rank},
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		want := SamplePlayer(4, "GBR", "M")
		if out.Data.Rank != 1 || out.Data.Points != want.Data.Points || out.Data.Height != want.Data.Height {
			t.Fatalf("data merge wrong: %+v", out.Data)
		}
		if out.Country.Code != "SCO" || out.Country.Picture != want.Country.Picture {
			t.Fatalf("country merge wrong: %+v", out.Country)
		}
		got, _ := repo.GetByID(ctx, 4)
		if got.Data.Rank != 1 {
			t.Fatalf("update not persisted: %+v", got.Data)
		}
	})

	t.Run("update_shortname_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		a, b := SamplePlayer(1, "USA", "F"), SamplePlayer(2, "USA", "F")
		seed(t, repo, a, b)
		_, err := repo.Update(context.Background(), b.ID, model.PlayerUpdate{Shortname: &a.Shortname})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("update_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		name := "X"
		_, err := repo.Update(context.Background(), 404, model.PlayerUpdate{Firstname: &name})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed(t, repo, SamplePlayer(9, "AUS", "M"))
		if err := repo.Delete(ctx, 9); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, 9); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, 9); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, players, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := players.Create(ctx, SamplePlayer(11, "CRO", "M"))
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := players.GetByID(ctx, 11); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, players, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := players.Create(ctx, SamplePlayer(12, "CRO", "M")); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := players.GetByID(ctx, 12); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
