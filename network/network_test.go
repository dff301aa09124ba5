// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network_test

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/consensus/election"
	"github.com/luxfi/nano/consensus/vote"
	"github.com/luxfi/nano/ledger/ledgertest"
	"github.com/luxfi/nano/network"
	"github.com/luxfi/nano/network/networkmock"
	"github.com/luxfi/nano/processor"
)

var errTest = errors.New("test error")

func testBlock(t *testing.T) block.Block {
	key := ledgertest.NewKey(t)
	return ledgertest.Send(t, key, ids.GenerateTestID(), ledgertest.Account(key), ledgertest.Amount(1))
}

func testVote(t *testing.T) *vote.Vote {
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	v, err := vote.New(key, 1, []ids.ID{ids.GenerateTestID()})
	require.NoError(t, err)
	return v
}

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  network.Message
	}{
		{
			name: "publish",
			msg:  &network.Publish{Block: testBlock(t).Bytes()},
		},
		{
			name: "confirm_req",
			msg: &network.ConfirmReq{Pairs: []network.RootHash{
				{Root: ids.GenerateTestID(), Hash: ids.GenerateTestID()},
			}},
		},
		{
			name: "confirm_ack",
			msg:  &network.ConfirmAck{Vote: testVote(t).Bytes()},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			bytes, err := network.Encode(test.msg)
			require.NoError(err)
			msg, err := network.Decode(bytes)
			require.NoError(err)
			require.Equal(test.msg, msg)
			require.Equal(test.name, msg.Op().String())
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	require := require.New(t)

	_, err := network.Decode([]byte{1, 2, 3})
	require.Error(err) //nolint:forbidigo // zstd does not export its errors

	bytes, err := network.Encode(&network.ConfirmReq{})
	require.NoError(err)
	_, err = network.Decode(bytes)
	require.Error(err) //nolint:forbidigo // unexported sentinel
}

func newChannels(ctrl *gomock.Controller, n int) []network.Channel {
	channels := make([]network.Channel, n)
	for i := range channels {
		c := networkmock.NewChannel(ctrl)
		c.EXPECT().NodeID().Return(ids.GenerateTestNodeID()).AnyTimes()
		channels[i] = c
	}
	return channels
}

func TestFlooderFanout(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	channels := newChannels(ctrl, 3)
	var sent int
	for _, c := range channels {
		c.(*networkmock.Channel).EXPECT().Send(gomock.Any()).DoAndReturn(func([]byte) error {
			sent++
			return nil
		}).MaxTimes(1)
	}
	peers := networkmock.NewPeers(ctrl)
	peers.EXPECT().Channels().Return(channels)

	f := network.NewFlooder(peers, 2, network.NewMetrics(metric.NewRegistry()), log.NewNoOpLogger())
	f.Flood(testBlock(t))
	require.Equal(2, sent)
}

func TestFlooderSplitsRequests(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	channels := newChannels(ctrl, 1)
	var sizes []int
	channels[0].(*networkmock.Channel).EXPECT().Send(gomock.Any()).DoAndReturn(func(bytes []byte) error {
		msg, err := network.Decode(bytes)
		require.NoError(err)
		sizes = append(sizes, len(msg.(*network.ConfirmReq).Pairs))
		return nil
	}).Times(2)
	peers := networkmock.NewPeers(ctrl)
	peers.EXPECT().Channels().Return(channels).Times(2)

	requests := make([]election.Request, network.MaxConfirmReqPairs+45)
	for i := range requests {
		requests[i] = election.Request{Root: ids.GenerateTestID(), Hash: ids.GenerateTestID()}
	}
	f := network.NewFlooder(peers, 0, network.NewMetrics(metric.NewRegistry()), log.NewNoOpLogger())
	f.RequestConfirmation(requests)
	require.Equal([]int{network.MaxConfirmReqPairs, 45}, sizes)
}

func TestFlooderSendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	channels := newChannels(ctrl, 2)
	for _, c := range channels {
		c.(*networkmock.Channel).EXPECT().Send(gomock.Any()).Return(errTest)
	}
	peers := networkmock.NewPeers(ctrl)
	peers.EXPECT().Channels().Return(channels)

	f := network.NewFlooder(peers, 0, network.NewMetrics(metric.NewRegistry()), log.NewNoOpLogger())
	f.Vote(testVote(t))
}

type blockQueue struct {
	full   bool
	blocks []block.Block
	source processor.Source
}

func (q *blockQueue) Add(blk block.Block, source processor.Source, _ ids.NodeID) bool {
	if q.full {
		return false
	}
	q.blocks = append(q.blocks, blk)
	q.source = source
	return true
}

type voteQueue struct {
	votes   []*vote.Vote
	origins []ids.NodeID
}

func (q *voteQueue) Add(v *vote.Vote, origin ids.NodeID) bool {
	q.votes = append(q.votes, v)
	q.origins = append(q.origins, origin)
	return true
}

func TestHandler(t *testing.T) {
	require := require.New(t)

	blocks := &blockQueue{}
	votes := &voteQueue{}
	h := network.NewHandler(blocks, votes, network.NewMetrics(metric.NewRegistry()), log.NewNoOpLogger())
	nodeID := ids.GenerateTestNodeID()

	blk := testBlock(t)
	bytes, err := network.Encode(&network.Publish{Block: blk.Bytes()})
	require.NoError(err)
	require.NoError(h.HandleMessage(nodeID, bytes))
	require.Len(blocks.blocks, 1)
	require.Equal(blk.Hash(), blocks.blocks[0].Hash())
	require.Equal(processor.Live, blocks.source)

	v := testVote(t)
	bytes, err = network.Encode(&network.ConfirmAck{Vote: v.Bytes()})
	require.NoError(err)
	require.NoError(h.HandleMessage(nodeID, bytes))
	require.Len(votes.votes, 1)
	require.Equal(v.Hash(), votes.votes[0].Hash())
	require.Equal([]ids.NodeID{nodeID}, votes.origins)

	bytes, err = network.Encode(&network.ConfirmReq{Pairs: []network.RootHash{{}}})
	require.NoError(err)
	require.NoError(h.HandleMessage(nodeID, bytes))

	bytes, err = network.Encode(&network.Publish{Block: []byte{0xff}})
	require.NoError(err)
	require.Error(h.HandleMessage(nodeID, bytes)) //nolint:forbidigo // codec errors are not exported

	blocks.full = true
	bytes, err = network.Encode(&network.Publish{Block: blk.Bytes()})
	require.NoError(err)
	require.NoError(h.HandleMessage(nodeID, bytes))
	require.Len(blocks.blocks, 1)
}
