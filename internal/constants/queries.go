package constants

// Read queries use ? placeholders and are passed through sqlx Rebind, so the
// same text runs on Postgres and SQLite.
const (
	ListTopAirlines = `
	SELECT airline, fleet_size, modernity_index_score, new_gen_share_features,
	       pct_newgen_narrow, pct_newgen_wide, cluster
	FROM v_airline_full
	ORDER BY modernity_index_score DESC, airline ASC
	LIMIT ?
	`

	ListAirlinesByCluster = `
	SELECT airline, fleet_size, modernity_index_score, new_gen_share_features,
	       pct_newgen_narrow, pct_newgen_wide, cluster
	FROM v_airline_full
	WHERE cluster = ?
	ORDER BY modernity_index_score DESC, airline ASC
	`

	ListRegionSummary = `
	SELECT region, n_airlines, mean_modernity_index, top_airlines
	FROM v_region_modernity
	ORDER BY mean_modernity_index DESC, region ASC
	`
)

// View definitions, recreated on every warehouse load.
const (
	DropAirlineFullView     = `DROP VIEW IF EXISTS v_airline_full`
	DropRegionModernityView = `DROP VIEW IF EXISTS v_region_modernity`

	CreateAirlineFullView = `
	CREATE VIEW v_airline_full AS
	SELECT s.airline               AS airline,
	       s.fleet_size            AS fleet_size,
	       s.modernity_index       AS modernity_index_score,
	       f.new_gen_share         AS new_gen_share_features,
	       f.pct_newgen_narrow     AS pct_newgen_narrow,
	       f.pct_newgen_wide       AS pct_newgen_wide,
	       c.cluster               AS cluster
	FROM airline_scores s
	LEFT JOIN airline_features f ON f.airline = s.airline
	LEFT JOIN airline_clusters c ON c.airline = s.airline
	`

	CreateRegionModernityView = `
	CREATE VIEW v_region_modernity AS
	SELECT region, n_airlines, mean_modernity_index, top_airlines
	FROM region_summary
	`
)
