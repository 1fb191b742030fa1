package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

// mapWriteErr turns duplicate-key write failures into ErrAlreadyExists.
func mapWriteErr(op string, err error) error {
	if mongodriver.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, repository.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func byID(id int64) bson.D {
	return bson.D{{Key: "id", Value: id}}
}

func filterDoc(f repository.PlayerFilter) bson.D {
	doc := bson.D{}
	if f.CountryCode != "" {
		doc = append(doc, bson.E{Key: "country.code", Value: f.CountryCode})
	}
	if f.Sex != "" {
		doc = append(doc, bson.E{Key: "sex", Value: f.Sex})
	}
	return doc
}

func sortDoc(s repository.Sort) bson.D {
	if s.Field == "" {
		s = repository.DefaultSort
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	doc := bson.D{{Key: s.Field, Value: dir}}
	if s.Field != "id" {
		// tie-break keeps pages stable
		doc = append(doc, bson.E{Key: "id", Value: 1})
	}
	return doc
}

func (s *Store) GetByID(ctx context.Context, id int64) (model.Player, error) {
	const op = "repository/mongo/GetByID"

	var p model.Player
	if err := s.players.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return model.Player{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return model.Player{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, q repository.ListQuery) (repository.PageResult[model.Player], error) {
	const op = "repository/mongo/List"

	filter := filterDoc(q.Filter)
	opts := options.Find().SetSort(sortDoc(q.Sort)).SetSkip(int64(max(q.Page.Offset, 0)))
	if q.Page.Limit > 0 {
		opts.SetLimit(int64(q.Page.Limit))
	}

	cur, err := s.players.Find(ctx, filter, opts)
	if err != nil {
		return repository.PageResult[model.Player]{}, fmt.Errorf("%s: find: %w", op, err)
	}
	items := make([]model.Player, 0, max(q.Page.Limit, 0))
	if err := cur.All(ctx, &items); err != nil {
		return repository.PageResult[model.Player]{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	total, err := s.players.CountDocuments(ctx, filter)
	if err != nil {
		return repository.PageResult[model.Player]{}, fmt.Errorf("%s: count: %w", op, err)
	}
	return repository.PageResult[model.Player]{Items: items, Total: total}, nil
}

func (s *Store) Count(ctx context.Context, f repository.PlayerFilter) (int64, error) {
	n, err := s.players.CountDocuments(ctx, filterDoc(f))
	if err != nil {
		return 0, fmt.Errorf("repository/mongo/Count: %w", err)
	}
	return n, nil
}

func (s *Store) All(ctx context.Context) ([]model.Player, error) {
	const op = "repository/mongo/All"

	cur, err := s.players.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	var out []model.Player
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return out, nil
}

// Heights skips documents whose data.height is missing or not numeric.
func (s *Store) Heights(ctx context.Context) ([]float64, error) {
	const op = "repository/mongo/Heights"

	filter := bson.D{{Key: "data.height", Value: bson.D{{Key: "$type", Value: "number"}}}}
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "data.height", Value: 1}})
	cur, err := s.players.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	var rows []struct {
		Data struct {
			Height float64 `bson:"height"`
		} `bson:"data"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Data.Height)
	}
	return out, nil
}

func (s *Store) ExistsByIDOrShortname(ctx context.Context, id int64, shortname string) (bool, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "shortname", Value: shortname}},
	}}}
	n, err := s.players.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("repository/mongo/ExistsByIDOrShortname: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ShortnameTaken(ctx context.Context, shortname string, exceptID int64) (bool, error) {
	filter := bson.D{
		{Key: "shortname", Value: shortname},
		{Key: "id", Value: bson.D{{Key: "$ne", Value: exceptID}}},
	}
	n, err := s.players.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("repository/mongo/ShortnameTaken: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Create(ctx context.Context, p model.Player) (model.Player, error) {
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.players.InsertOne(ctx, p); err != nil {
		return model.Player{}, mapWriteErr("repository/mongo/Create", err)
	}
	return p, nil
}

// CreateMany is an ordered InsertMany. Without a transaction a failure part-way
// keeps the documents inserted before it; callers pre-check conflicts.
func (s *Store) CreateMany(ctx context.Context, ps []model.Player) ([]model.Player, error) {
	now := s.now()
	docs := make([]interface{}, 0, len(ps))
	out := make([]model.Player, 0, len(ps))
	for _, p := range ps {
		p.CreatedAt, p.UpdatedAt = now, now
		docs = append(docs, p)
		out = append(out, p)
	}
	if _, err := s.players.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, mapWriteErr("repository/mongo/CreateMany", err)
	}
	return out, nil
}

func (s *Store) Replace(ctx context.Context, p model.Player) (model.Player, error) {
	set := bson.D{
		{Key: "firstname", Value: p.Firstname},
		{Key: "lastname", Value: p.Lastname},
		{Key: "shortname", Value: p.Shortname},
		{Key: "sex", Value: p.Sex},
		{Key: "country", Value: p.Country},
		{Key: "picture", Value: p.Picture},
		{Key: "data", Value: p.Data},
		{Key: "updatedAt", Value: s.now()},
	}
	return s.findAndSet(ctx, "repository/mongo/Replace", p.ID, set)
}

// Update turns the patch into one dotted $set, so nested fields not named are kept.
func (s *Store) Update(ctx context.Context, id int64, u model.PlayerUpdate) (model.Player, error) {
	set := updateSet(u)
	set = append(set, bson.E{Key: "updatedAt", Value: s.now()})
	return s.findAndSet(ctx, "repository/mongo/Update", id, set)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	const op = "repository/mongo/Delete"

	res, err := s.players.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

func (s *Store) findAndSet(ctx context.Context, op string, id int64, set bson.D) (model.Player, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out model.Player
	err := s.players.FindOneAndUpdate(ctx, byID(id), bson.D{{Key: "$set", Value: set}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return model.Player{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return model.Player{}, mapWriteErr(op, err)
	}
	return out, nil
}

func updateSet(u model.PlayerUpdate) bson.D {
	set := bson.D{}
	str := func(key string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}
	num := func(key string, v *int) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}

	str("firstname", u.Firstname)
	str("lastname", u.Lastname)
	str("shortname", u.Shortname)
	str("sex", u.Sex)
	str("picture", u.Picture)
	if u.Country != nil {
		str("country.picture", u.Country.Picture)
		str("country.code", u.Country.Code)
	}
	if u.Data != nil {
		num("data.rank", u.Data.Rank)
		num("data.points", u.Data.Points)
		num("data.weight", u.Data.Weight)
		num("data.height", u.Data.Height)
		num("data.age", u.Data.Age)
		if u.Data.Last != nil {
			set = append(set, bson.E{Key: "data.last", Value: u.Data.Last})
		}
	}
	return set
}

var _ repository.PlayerRepository = (*Store)(nil)
