package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
)

func runDescriptionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	uniqueName := func(base string) string {
		return fmt.Sprintf("%s %d", base, time.Now().UnixNano())
	}

	t.Run("BulkGet returns only stored names", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		bolt := uniqueName("Lightning Bolt")
		strix := uniqueName("Baleful Strix")
		missing := uniqueName("Storm Crow")

		err := repo.Description().BulkPut(ctx, []*model.DescriptionRecord{
			{Name: bolt, Description: "Deal 3 damage to any target."},
			{Name: strix, Description: "Flying, deathtouch. Draws a card on entry."},
		})
		gt.NoError(t, err).Required()

		found, err := repo.Description().BulkGet(ctx, []string{bolt, strix, missing})
		gt.NoError(t, err).Required()

		gt.Map(t, found).HasKey(bolt)
		gt.Map(t, found).HasKey(strix)
		gt.Value(t, found[bolt]).Equal("Deal 3 damage to any target.")
		gt.Number(t, len(found)).Equal(2)
	})

	t.Run("BulkGet with empty input returns empty map", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		found, err := repo.Description().BulkGet(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Number(t, len(found)).Equal(0)
	})

	t.Run("duplicate put does not change stored content", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		name := uniqueName("Counterspell")

		err := repo.Description().BulkPut(ctx, []*model.DescriptionRecord{
			{Name: name, Description: "Counter target spell."},
		})
		gt.NoError(t, err).Required()

		err = repo.Description().BulkPut(ctx, []*model.DescriptionRecord{
			{Name: name, Description: "Counter target spell."},
		})
		gt.NoError(t, err).Required()

		found, err := repo.Description().BulkGet(ctx, []string{name})
		gt.NoError(t, err).Required()
		gt.Value(t, found[name]).Equal("Counter target spell.")
	})

	t.Run("BulkGet handles more than one query chunk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var names []string
		var records []*model.DescriptionRecord
		for i := 0; i < 35; i++ {
			name := uniqueName(fmt.Sprintf("Card %02d", i))
			names = append(names, name)
			records = append(records, &model.DescriptionRecord{
				Name:        name,
				Description: fmt.Sprintf("description %d", i),
			})
		}

		gt.NoError(t, repo.Description().BulkPut(ctx, records)).Required()

		found, err := repo.Description().BulkGet(ctx, names)
		gt.NoError(t, err).Required()
		gt.Number(t, len(found)).Equal(35)
	})
}
