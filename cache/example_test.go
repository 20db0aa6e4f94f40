package cache_test

import (
	"context"
	"fmt"

	"github.com/goliatone/go-loading-cache/cache"
)

type user struct {
	ID   string
	Name string
}

// userStore has the shape of a repository read: extra variadic criteria
// after the key.
type userStore struct{}

func (userStore) GetByID(_ context.Context, id string, _ ...string) (user, error) {
	return user{ID: id, Name: "user " + id}, nil
}

func ExampleLoaderFunc() {
	repo := userStore{}

	users, err := cache.NewBuilder[string, user]().
		MaxSize(100).
		BuildWithLoader(cache.LoaderFunc[string, user](func(ctx context.Context, id string) (user, error) {
			return repo.GetByID(ctx, id)
		}))
	if err != nil {
		panic(err)
	}

	u, err := users.Get(context.Background(), "42")
	if err != nil {
		panic(err)
	}

	fmt.Println(u.Name)
	fmt.Println(users.Stats())
	// Output:
	// user 42
	// CacheStats{size=1, max=100}
}
