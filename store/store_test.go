package store_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogly/models"
	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/store/storetest"
)

func mustUser(t *testing.T, st *store.Store, first, last string) *models.User {
	t.Helper()
	u := &models.User{FirstName: first, LastName: last}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func mustTags(t *testing.T, st *store.Store, names ...string) []models.Tag {
	t.Helper()
	tags := make([]models.Tag, 0, len(names))
	for _, n := range names {
		tag := models.Tag{Name: n}
		require.NoError(t, st.CreateTag(context.Background(), &tag))
		tags = append(tags, tag)
	}
	return tags
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

func countRows(t *testing.T, st *store.Store, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, st.DB().Model(model).Count(&n).Error)
	return n
}

func TestStore_CreateUserDefaultsImage(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		image string
		want  string
	}{
		{name: "blank image", image: "", want: models.DefaultImageURL},
		{name: "spaces only", image: "  ", want: models.DefaultImageURL},
		{name: "custom image", image: "https://example.com/a.png", want: "https://example.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{FirstName: "Jane", LastName: "Smith", ImageURL: tt.image}
			require.NoError(t, st.CreateUser(ctx, u))

			got, err := st.GetUser(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ImageURL)
		})
	}
}

func TestStore_UpdateUser(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "John", "Doe")

	u.FirstName = "Johnny"
	u.ImageURL = ""
	require.NoError(t, st.UpdateUser(ctx, u))

	got, err := st.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", got.FullName())
	assert.Equal(t, models.DefaultImageURL, got.ImageURL)
}

func TestStore_ListUsersOrdered(t *testing.T) {
	st := storetest.NewStore(t)
	mustUser(t, st, "Bob", "Brown")
	mustUser(t, st, "Alice", "Johnson")
	mustUser(t, st, "Aaron", "Brown")

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Aaron Brown", users[0].FullName())
	assert.Equal(t, "Bob Brown", users[1].FullName())
	assert.Equal(t, "Alice Johnson", users[2].FullName())
}

func TestStore_GetMissingReturnsNotFound(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()

	_, err := st.GetUser(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetPost(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetTag(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.DeleteTag(ctx, 42), store.ErrNotFound)
	assert.ErrorIs(t, st.DeletePost(ctx, 42), store.ErrNotFound)
	assert.ErrorIs(t, st.DeleteUser(ctx, 42), store.ErrNotFound)
}

func TestStore_UpdateMissingReturnsNotFound(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	kept := mustUser(t, st, "John", "Doe")
	mustTags(t, st, "go")

	assert.ErrorIs(t, st.UpdateUser(ctx, &models.User{ID: 999, FirstName: "Ghost", LastName: "User"}), store.ErrNotFound)
	assert.ErrorIs(t, st.UpdateTag(ctx, &models.Tag{ID: 999, Name: "ghost"}), store.ErrNotFound)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, kept.ID, users[0].ID)
	tags, err := st.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tagNames(tags))

	// writing back the same values is not a missing row
	assert.NoError(t, st.UpdateUser(ctx, kept))
}

func TestStore_DeleteUserCascades(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	owner := mustUser(t, st, "John", "Doe")
	other := mustUser(t, st, "Jane", "Smith")
	mustTags(t, st, "red")

	for _, title := range []string{"one", "two"} {
		p := &models.Post{Title: title, Content: "body", UserID: owner.ID}
		_, err := st.CreatePost(ctx, p, []string{"red"})
		require.NoError(t, err)
	}
	kept := &models.Post{Title: "kept", Content: "body", UserID: other.ID}
	_, err := st.CreatePost(ctx, kept, []string{"red"})
	require.NoError(t, err)

	require.NoError(t, st.DeleteUser(ctx, owner.ID))

	_, err = st.GetUser(ctx, owner.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	posts, err := st.PostsByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int64(1), countRows(t, st, &models.Post{}))
	assert.Equal(t, int64(1), countRows(t, st, &models.PostTag{}))
	assert.Equal(t, int64(1), countRows(t, st, &models.Tag{}))
}

func TestStore_CreateTagDuplicate(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	mustTags(t, st, "go")
	before := countRows(t, st, &models.Tag{})

	dup := &models.Tag{Name: "go"}
	err := st.CreateTag(ctx, dup)

	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.True(t, store.IsConstraintViolation(err))
	assert.Zero(t, dup.ID)
	assert.Equal(t, before, countRows(t, st, &models.Tag{}))
}

func TestStore_UpdateTag(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	tags := mustTags(t, st, "go", "rust")

	t.Run("rename to free name", func(t *testing.T) {
		tag := tags[0]
		tag.Name = "golang"
		require.NoError(t, st.UpdateTag(ctx, &tag))
		got, err := st.GetTag(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, "golang", got.Name)
	})

	t.Run("rename to own name", func(t *testing.T) {
		tag := tags[1]
		assert.NoError(t, st.UpdateTag(ctx, &tag))
	})

	t.Run("rename to taken name", func(t *testing.T) {
		tag := tags[1]
		tag.Name = "golang"
		assert.ErrorIs(t, st.UpdateTag(ctx, &tag), store.ErrDuplicate)
		got, err := st.GetTag(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, "rust", got.Name)
	})
}

func TestStore_CreatePostSkipsUnknownTags(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "John", "Doe")
	mustTags(t, st, "red")

	post := &models.Post{Title: "Colors", Content: "A post about colors", UserID: u.ID}
	skipped, err := st.CreatePost(ctx, post, []string{"red", "blue"})

	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, []string{"blue"}, skipped)
	assert.Equal(t, int64(1), countRows(t, st, &models.PostTag{}))

	tags, err := st.TagsForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, tagNames(tags))
	assert.False(t, post.CreatedAt.IsZero())
}

func TestStore_CreatePostRollsBackOnFailure(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()

	// user 999 does not exist, so the foreign key rejects the insert
	post := &models.Post{Title: "Orphan", Content: "no owner", UserID: 999}
	_, err := st.CreatePost(ctx, post, nil)

	require.Error(t, err)
	assert.Zero(t, post.ID)
	assert.Equal(t, int64(0), countRows(t, st, &models.Post{}))
}

func TestStore_UpdatePostReplacesTags(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "John", "Doe")
	mustTags(t, st, "red", "blue", "green")

	post := &models.Post{Title: "Colors", Content: "body", UserID: u.ID}
	_, err := st.CreatePost(ctx, post, []string{"red", "blue"})
	require.NoError(t, err)

	post.Title = "Only green"
	skipped, err := st.UpdatePost(ctx, post, []string{"green"})
	require.NoError(t, err)
	assert.Empty(t, skipped)

	tags, err := st.TagsForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"green"}, tagNames(tags))

	got, err := st.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Only green", got.Title)

	_, err = st.UpdatePost(ctx, post, nil)
	require.NoError(t, err)
	tags, err = st.TagsForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestStore_DeletePostRemovesLinks(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "John", "Doe")
	tags := mustTags(t, st, "red")

	post := &models.Post{Title: "Bye", Content: "body", UserID: u.ID}
	_, err := st.CreatePost(ctx, post, []string{"red"})
	require.NoError(t, err)

	require.NoError(t, st.DeletePost(ctx, post.ID))

	assert.Equal(t, int64(0), countRows(t, st, &models.PostTag{}))
	posts, err := st.PostsForTag(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestStore_DeleteTagDetachesPosts(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "John", "Doe")
	tags := mustTags(t, st, "red", "blue")

	post := &models.Post{Title: "Colors", Content: "body", UserID: u.ID}
	_, err := st.CreatePost(ctx, post, []string{"red", "blue"})
	require.NoError(t, err)

	posts, err := st.PostsForTag(ctx, tags[0].ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	require.NoError(t, st.DeleteTag(ctx, tags[0].ID))

	remaining, err := st.TagsForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, tagNames(remaining))
	_, err = st.GetPost(ctx, post.ID)
	assert.NoError(t, err)
}

func TestStore_FindTagsByNames(t *testing.T) {
	st := storetest.NewStore(t)
	mustTags(t, st, "tag1", "tag2", "tag3")

	tests := []struct {
		name        string
		input       []string
		wantFound   []string
		wantMissing []string
	}{
		{name: "all existing", input: []string{"tag1", "tag2"}, wantFound: []string{"tag1", "tag2"}},
		{name: "mixed", input: []string{"tag3", "nope"}, wantFound: []string{"tag3"}, wantMissing: []string{"nope"}},
		{name: "duplicates and blanks", input: []string{"tag1", " tag1 ", ""}, wantFound: []string{"tag1"}},
		{name: "empty", input: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, missing, err := st.FindTagsByNames(context.Background(), tt.input)
			require.NoError(t, err)
			if len(tt.wantFound) == 0 {
				assert.Empty(t, found)
			} else {
				assert.Equal(t, tt.wantFound, tagNames(found))
			}
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}

func TestStore_RecentPosts(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	u := mustUser(t, st, "John", "Doe")

	for _, title := range []string{"a", "b", "c"} {
		_, err := st.CreatePost(ctx, &models.Post{Title: title, Content: "body", UserID: u.ID}, nil)
		require.NoError(t, err)
	}

	posts, err := st.RecentPosts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "c", posts[0].Title)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "John Doe", posts[0].User.FullName())
}

func TestStore_Seed(t *testing.T) {
	st := storetest.NewStore(t)
	ctx := context.Background()
	mustUser(t, st, "Stale", "Row")

	require.NoError(t, st.Seed(ctx))
	require.NoError(t, st.Seed(ctx))

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
	assert.Equal(t, int64(4), countRows(t, st, &models.Tag{}))
	assert.Equal(t, int64(4), countRows(t, st, &models.Post{}))
}
