// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage slots of a rewards pool.
// It follows the flow as bellow:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ playback(staging) ] -> [ kv batch ]
//	          |
//	    [ kv getter ]
//
// Slot values are rlp encoded. An empty value means the slot is unset.
package state
