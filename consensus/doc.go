// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

/*
Package consensus groups the components that decide which of several
conflicting blocks the network keeps.

# Components

Election: one contest per root. Representatives' votes are tallied by
weight; a block whose tally reaches the quorum delta, untied, is confirmed.
The active set bounds the number of concurrent elections and routes votes
to them. Located in the election subpackage.

Vote: signed representative votes, spam tiering and a batched verification
queue. Located in the vote subpackage.

Online: sampled and trended online weight, from which the quorum delta is
derived. Located in the online subpackage.

Scheduler: balance-bucketed queues deciding which uncemented blocks get an
election next. Located in the scheduler subpackage.

Confirmed blocks are cemented by the cementing package.
*/
package consensus
