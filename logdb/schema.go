// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// amounts are decimal strings, uint256 does not fit an sqlite integer
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	pool TEXT NOT NULL,
	kind TEXT NOT NULL,
	participant BLOB(20),
	class INTEGER NOT NULL,
	amount TEXT NOT NULL,
	time INTEGER NOT NULL,
	rewardPerUnit TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS eventPoolTimeIndex ON event(pool, time);
CREATE INDEX IF NOT EXISTS eventParticipantIndex ON event(participant);
CREATE INDEX IF NOT EXISTS eventKindIndex ON event(kind);
`
