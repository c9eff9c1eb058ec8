/*
Package scheduler implements the autoscaling placement engine for
queuesim's three batch-compute queues.

Manager owns one vmpool.Pool per queue and exposes two operations:
Schedule, called once per arriving job, and Shutdown, called once at
end-of-stream. There is no background loop and no ticker — unlike this
package's counterpart in the teacher codebase, which runs a 5-second
scheduling cycle in its own goroutine, Manager has no clock of its own.
Every decision it makes is a function of the timestamp carried by the
job it was just handed.

# Schedule

Schedule performs, in order:

 1. Warm-up: on the very first call, launch Floor VMs per queue.
 2. Counters: walk the arriving job's queue once, computing how many
    VMs are free ignoring boot delay, how many are free and
    boot-complete, and the first VM eligible to take the job within
    PlacementSlackSeconds.
 3. Assign: place the job on the eligible VM, or tolerate/fail the miss
    depending on whether the run is still inside its warm-up grace
    window.
 4. Retire surplus: if idle fraction exceeds MaxIdleFraction and
    retiring the excess would still leave free-ignoring-boot above
    Floor, retire up to that many VMs, taking only VMs near the end of
    their billing hour and never dropping the pool below Floor.
 5. Raise to floor: if free-ignoring-boot has fallen under Floor,
    launch back up to it.
 6. Raise to MinIdleFraction: if idle fraction (post floor-raise) is
    still under MinIdleFraction, launch the difference.

Steps 4-6 run in that order deliberately: relieving cost (retiring
surplus) always happens before growing capacity, and the floor is
restored before the softer idle-fraction target is considered, so a
pool that's both below floor and below MinIdleFraction never
under-launches.
*/
package scheduler
