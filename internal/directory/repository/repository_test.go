package repository_test

import (
	"context"
	"errors"
	"testing"

	"bighome_hub/internal/directory/repository"
	"bighome_hub/platform/db/dbtest"

	"github.com/google/uuid"
)

func TestMembers(t *testing.T) {
	pool := dbtest.Start(t)
	repo := repository.New(pool)
	ctx := context.Background()
	org := uuid.New()

	bruna, err := repo.CreateMember(ctx, repository.CreateMemberParams{
		OrganizationID: org, Name: "Bruna", Email: "bruna@bighome.com.br", Role: "agent",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateMember(ctx, repository.CreateMemberParams{
		OrganizationID: org, Name: "alex", Email: "alex@bighome.com.br", Role: "manager",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetMember(ctx, org, bruna.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "bruna@bighome.com.br" || !got.Active {
		t.Errorf("member = %+v", got)
	}

	if _, err := repo.GetMember(ctx, uuid.New(), bruna.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound across organizations, got %v", err)
	}

	team, err := repo.ListMembers(ctx, org, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(team) != 2 || team[0].Name != "alex" || team[1].Name != "Bruna" {
		t.Errorf("team = %+v", team)
	}
}
