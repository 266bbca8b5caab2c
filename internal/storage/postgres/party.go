package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tilequest/internal/game/character"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// ErrPartyNotFound is returned when no party is saved under the requested name.
var ErrPartyNotFound = errors.New("party not found")

// PartyRepository saves and restores the party roster, pack and purse.
// Classes and gear are stored by ID and resolved against the registries on load.
type PartyRepository struct {
	db    *pgxpool.Pool
	rules *ruleset.Registry
	items *inventory.Registry
}

// NewPartyRepository creates a PartyRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool; rules and items must be non-nil.
func NewPartyRepository(db *pgxpool.Pool, rules *ruleset.Registry, items *inventory.Registry) *PartyRepository {
	return &PartyRepository{db: db, rules: rules, items: items}
}

// Save writes p under name, replacing whatever was saved there before.
//
// Precondition: p must be non-nil with at least one player; name must be non-empty.
// Postcondition: p.ID and every player's ID are set on success. On error nothing is written.
func (r *PartyRepository) Save(ctx context.Context, name string, p *character.Party) error {
	if name == "" {
		return errors.New("party name must not be empty")
	}
	if p == nil || len(p.Players) == 0 {
		return errors.New("party must have at least one player")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var partyID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO parties (name, gold) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET gold = EXCLUDED.gold, updated_at = NOW()
		RETURNING id`,
		name, p.Gold,
	).Scan(&partyID)
	if err != nil {
		return fmt.Errorf("upserting party: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM party_members WHERE party_id = $1`,
		`DELETE FROM party_items WHERE party_id = $1`,
		`DELETE FROM party_gear WHERE party_id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, partyID); err != nil {
			return fmt.Errorf("clearing party %d: %w", partyID, err)
		}
	}

	memberIDs := make([]int64, len(p.Players))
	for i, pl := range p.Players {
		m := pl.Modifiers
		err := tx.QueryRow(ctx, `
			INSERT INTO party_members
				(party_id, position, name, class, level, experience,
				 hp_mod, mp_mod, po_mod, pd_mod, mo_mod, md_mod)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING id`,
			partyID, i, pl.Name, pl.Class.ID, pl.Level, pl.Experience,
			m.HealthPoints, m.MagicPoints, m.PhysicalOffense, m.PhysicalDefense,
			m.MagicalOffense, m.MagicalDefense,
		).Scan(&memberIDs[i])
		if err != nil {
			return fmt.Errorf("inserting member %q: %w", pl.Name, err)
		}

		batch := &pgx.Batch{}
		for slot, gearID := range pl.Equipment.IDs() {
			batch.Queue(`INSERT INTO member_equipment (member_id, slot, gear_id) VALUES ($1, $2, $3)`,
				memberIDs[i], string(slot), gearID)
		}
		if err := sendBatch(ctx, tx, batch); err != nil {
			return fmt.Errorf("saving equipment for %q: %w", pl.Name, err)
		}
	}

	batch := &pgx.Batch{}
	for _, it := range p.Pack.Items() {
		batch.Queue(`INSERT INTO party_items (party_id, item_id, instance_id, quantity) VALUES ($1, $2, $3, $4)`,
			partyID, it.ItemDefID, it.InstanceID, it.Quantity)
	}
	for _, g := range p.Pack.Gear() {
		batch.Queue(`INSERT INTO party_gear (instance_id, party_id, gear_id) VALUES ($1, $2, $3)`,
			g.InstanceID, partyID, g.GearDefID)
	}
	if err := sendBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("saving pack: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing party: %w", err)
	}
	p.ID = partyID
	for i, pl := range p.Players {
		pl.ID = memberIDs[i]
	}
	return nil
}

// Load restores the party saved under name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the party or ErrPartyNotFound. Saved classes and gear
// that no longer exist in the registries produce an error.
func (r *PartyRepository) Load(ctx context.Context, name string) (*character.Party, error) {
	party := character.NewParty()
	err := r.db.QueryRow(ctx, `SELECT id, gold FROM parties WHERE name = $1`, name).
		Scan(&party.ID, &party.Gold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("loading party %q: %w", name, err)
	}

	players, err := r.loadMembers(ctx, party.ID)
	if err != nil {
		return nil, err
	}
	party.Players = players

	items, gear, err := r.loadPack(ctx, party.ID)
	if err != nil {
		return nil, err
	}
	party.Pack.Restore(items, gear)
	return party, nil
}

func (r *PartyRepository) loadMembers(ctx context.Context, partyID int64) ([]*character.Player, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, class, level, experience,
		       hp_mod, mp_mod, po_mod, pd_mod, mo_mod, md_mod, created_at, updated_at
		FROM party_members WHERE party_id = $1 ORDER BY position ASC`,
		partyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var (
		players []*character.Player
		classes []string
	)
	for rows.Next() {
		var (
			pl      character.Player
			classID string
			m       stats.Value
		)
		if err := rows.Scan(&pl.ID, &pl.Name, &classID, &pl.Level, &pl.Experience,
			&m.HealthPoints, &m.MagicPoints, &m.PhysicalOffense, &m.PhysicalDefense,
			&m.MagicalOffense, &m.MagicalDefense, &pl.CreatedAt, &pl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		pl.Modifiers = m
		players = append(players, &pl)
		classes = append(classes, classID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}

	for i, pl := range players {
		class, ok := r.rules.Class(classes[i])
		if !ok {
			return nil, fmt.Errorf("member %q has unknown class %q", pl.Name, classes[i])
		}
		pl.Class = class
		if err := r.loadEquipment(ctx, pl); err != nil {
			return nil, err
		}
		// Re-clamp in case content changed the maximums since the save.
		pl.ApplyModifier(stats.Value{})
	}
	return players, nil
}

func (r *PartyRepository) loadEquipment(ctx context.Context, pl *character.Player) error {
	rows, err := r.db.Query(ctx, `SELECT gear_id FROM member_equipment WHERE member_id = $1 ORDER BY slot`, pl.ID)
	if err != nil {
		return fmt.Errorf("listing equipment for %q: %w", pl.Name, err)
	}
	gearIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scanning equipment for %q: %w", pl.Name, err)
	}
	for _, id := range gearIDs {
		g, ok := r.items.Gear(id)
		if !ok {
			return fmt.Errorf("member %q has unknown gear %q", pl.Name, id)
		}
		if _, err := pl.Equipment.Equip(g); err != nil {
			return fmt.Errorf("equipping %q on %q: %w", id, pl.Name, err)
		}
	}
	return nil
}

func (r *PartyRepository) loadPack(ctx context.Context, partyID int64) ([]inventory.ItemStack, []inventory.GearInstance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT instance_id::text, item_id, quantity FROM party_items
		WHERE party_id = $1 ORDER BY item_id`, partyID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.ItemStack, error) {
		var s inventory.ItemStack
		err := row.Scan(&s.InstanceID, &s.ItemDefID, &s.Quantity)
		return s, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scanning items: %w", err)
	}
	for _, s := range items {
		if _, ok := r.items.Item(s.ItemDefID); !ok {
			return nil, nil, fmt.Errorf("pack holds unknown item %q", s.ItemDefID)
		}
	}

	rows, err = r.db.Query(ctx, `
		SELECT instance_id::text, gear_id FROM party_gear
		WHERE party_id = $1 ORDER BY gear_id, instance_id`, partyID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing gear: %w", err)
	}
	gear, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.GearInstance, error) {
		var g inventory.GearInstance
		err := row.Scan(&g.InstanceID, &g.GearDefID)
		return g, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scanning gear: %w", err)
	}
	return items, gear, nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, b).Close()
}
